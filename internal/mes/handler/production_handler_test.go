package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/handler"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
)

// setupEnv 建库建路由，路由注册与 cmd/server 保持一致
func setupEnv(t *testing.T) (*gin.Engine, *service.Services) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil)
	h := handler.NewHandlers(services)

	r := testutil.SetupRouter()
	v1 := testutil.AuthGroup(r, "/api/v1")

	bom := v1.Group("/bom")
	bom.GET("/part-names", h.BOM.ListPartNames)
	bom.GET("/by-part-name", h.BOM.GetByPartName)
	bom.GET("", h.BOM.List)
	bom.POST("", h.BOM.Create)
	bom.GET("/:id", h.BOM.Get)
	bom.PUT("/:id", h.BOM.Update)

	production := v1.Group("/production")
	production.GET("/draft", h.Production.Draft)
	production.GET("/all", h.Production.List)
	production.POST("", h.Production.Create)
	production.PUT("", h.Production.Update)
	production.GET("/:id", h.Production.Get)
	production.PATCH("/:id/ready-for-qc", h.Production.ReadyForQC)
	production.PATCH("/:id/qc-done", h.Quality.Complete)

	quality := v1.Group("/quality")
	quality.GET("/pending", h.Quality.Pending)

	return r, services
}

// seedCompoundBOM 造一张基准产出量40的胶料配方
func seedCompoundBOM(t *testing.T, services *service.Services) *entity.BillOfMaterial {
	t.Helper()
	bom, err := services.BOM.Create(context.Background(), &service.CreateBOMRequest{
		BOMType:        entity.BOMTypeCompound,
		CompoundName:   "NBR-70",
		CompoundCodes:  []string{"C-NBR-70"},
		CompoundWeight: "40",
		Hardness:       "70A",
		Processes:      []string{"混炼", "硫化"},
		RawMaterials: []entity.RawMaterialLine{
			{MaterialName: "生胶", MaterialCode: "RM-001", UOM: "kg", Quantities: entity.StringArray{"10"}},
			{MaterialName: "炭黑", MaterialCode: "RM-002", UOM: "kg", Quantities: entity.StringArray{"4.5"}},
		},
		Accelerators: []entity.AcceleratorLine{
			{Name: "促进剂DM", Quantity: "0.8"},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("seed bom: %v", err)
	}
	return bom
}

func data(resp map[string]interface{}) map[string]interface{} {
	d, _ := resp["data"].(map[string]interface{})
	return d
}

func obj(m map[string]interface{}, key string) map[string]interface{} {
	o, _ := m[key].(map[string]interface{})
	return o
}

func arr(m map[string]interface{}, key string) []interface{} {
	a, _ := m[key].([]interface{})
	return a
}

func TestProductionDraft(t *testing.T) {
	r, services := setupEnv(t)
	bom := seedCompoundBOM(t, services)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, http.MethodGet,
		fmt.Sprintf("/api/v1/production/draft?bom_id=%s&est_qty=200", bom.ID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("draft status %d: %s", w.Code, w.Body.String())
	}

	run := obj(data(testutil.ParseResponse(w)), "production")
	out := arr(run, "part_names")[0].(map[string]interface{})
	if out["est_qty"].(float64) != 200 {
		t.Fatalf("expected output est 200, got %v", out["est_qty"])
	}
	// 200/40 × 10
	raw := arr(run, "raw_materials")[0].(map[string]interface{})
	if raw["est_qty"].(float64) != 50 {
		t.Fatalf("expected raw est 50, got %v", raw["est_qty"])
	}
	if raw["base_qty"].(float64) != 0.25 {
		t.Fatalf("expected base 0.25, got %v", raw["base_qty"])
	}
}

func TestProductionDraftUnknownBOM(t *testing.T) {
	r, _ := setupEnv(t)
	w := testutil.DoRequest(r, http.MethodGet,
		"/api/v1/production/draft?bom_id=nope", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProductionLifecycle(t *testing.T) {
	r, services := setupEnv(t)
	bom := seedCompoundBOM(t, services)
	token := testutil.DefaultTestToken()

	// 新建：目标产出量200
	create := map[string]interface{}{
		"bom":        bom.ID,
		"part_names": []map[string]interface{}{{"est_qty": 200}},
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/production", create, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}
	run := obj(data(testutil.ParseResponse(w)), "production")
	runID := run["_id"].(string)
	if run["status"].(string) != entity.StatusPending {
		t.Fatalf("new run must be pending, got %v", run["status"])
	}

	// 超限录入被拒，记录不落库变更
	over := map[string]interface{}{
		"_id":        runID,
		"bom":        bom.ID,
		"part_names": []map[string]interface{}{{"est_qty": 200}},
		"raw_materials": []map[string]interface{}{
			{"name": "生胶", "used_qty": 50.01},
		},
	}
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/production", over, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("over-ceiling edit must 400, got %d: %s", w.Code, w.Body.String())
	}

	// 投料完成、工序全关、产出满额
	finish := map[string]interface{}{
		"_id":        runID,
		"bom":        bom.ID,
		"part_names": []map[string]interface{}{{"est_qty": 200, "prod_qty": 200}},
		"raw_materials": []map[string]interface{}{
			{"name": "生胶", "used_qty": 50},
			{"name": "炭黑", "used_qty": 22.5},
		},
		"accelerators": []map[string]interface{}{
			{"name": "促进剂DM", "used_qty": 4},
		},
		"processes": []map[string]interface{}{
			{"process_name": "混炼", "start": true, "done": true},
			{"process_name": "硫化", "start": true, "done": true},
		},
	}
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/production", finish, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", w.Code, w.Body.String())
	}
	run = obj(data(testutil.ParseResponse(w)), "production")
	if run["status"].(string) != entity.StatusCompleted {
		t.Fatalf("expected completed, got %v", run["status"])
	}

	// 详情里的派生视图
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/production/"+runID, nil, token)
	d := data(testutil.ParseResponse(w))
	if d["can_send_to_qc"].(bool) != true {
		t.Fatalf("expected send-to-qc eligible: %s", w.Body.String())
	}
	if d["quantity_match"].(string) != "matched" {
		t.Fatalf("expected matched, got %v", d["quantity_match"])
	}

	// 送检
	w = testutil.DoRequest(r, http.MethodPatch, "/api/v1/production/"+runID+"/ready-for-qc", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("send to qc status %d: %s", w.Code, w.Body.String())
	}
	// 重复送检被拒
	w = testutil.DoRequest(r, http.MethodPatch, "/api/v1/production/"+runID+"/ready-for-qc", nil, token)
	if w.Code == http.StatusOK {
		t.Fatal("second send must be rejected")
	}

	// 送检后生产侧不可修改
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/production", finish, token)
	if w.Code == http.StatusOK {
		t.Fatal("post-qc edit without admin override must be rejected")
	}
	// 管理员通道放行
	finish["admin_override"] = true
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/production", finish, token)
	if w.Code != http.StatusOK {
		t.Fatalf("admin override edit status %d: %s", w.Code, w.Body.String())
	}

	// 待检清单应包含该记录
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/quality/pending", nil, token)
	pending := arr(data(testutil.ParseResponse(w)), "productions")
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending run, got %d", len(pending))
	}

	// QC完结
	w = testutil.DoRequest(r, http.MethodPatch, "/api/v1/production/"+runID+"/qc-done", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("qc done status %d: %s", w.Code, w.Body.String())
	}
	run = obj(data(testutil.ParseResponse(w)), "production")
	if run["qc_done"].(bool) != true {
		t.Fatalf("expected qc_done, got %v", run["qc_done"])
	}

	// 完结后清单应为空
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/quality/pending", nil, token)
	if got := arr(data(testutil.ParseResponse(w)), "productions"); len(got) != 0 {
		t.Fatalf("expected empty pending list, got %d", len(got))
	}
}

func TestProductionSendToQCGateBlocked(t *testing.T) {
	r, services := setupEnv(t)
	bom := seedCompoundBOM(t, services)
	token := testutil.DefaultTestToken()

	// 工序完成但原料没投满：剩余量非零，闸门拒绝
	create := map[string]interface{}{
		"bom":        bom.ID,
		"part_names": []map[string]interface{}{{"est_qty": 200, "prod_qty": 200}},
		"raw_materials": []map[string]interface{}{
			{"name": "生胶", "used_qty": 30},
		},
		"processes": []map[string]interface{}{
			{"process_name": "混炼", "start": true, "done": true},
			{"process_name": "硫化", "start": true, "done": true},
		},
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/production", create, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}
	runID := obj(data(testutil.ParseResponse(w)), "production")["_id"].(string)

	w = testutil.DoRequest(r, http.MethodPatch, "/api/v1/production/"+runID+"/ready-for-qc", nil, token)
	if w.Code == http.StatusOK {
		t.Fatalf("gate must reject nonzero remainder: %s", w.Body.String())
	}
}

func TestQualityCompleteUnknownRun(t *testing.T) {
	r, _ := setupEnv(t)
	w := testutil.DoRequest(r, http.MethodPatch,
		"/api/v1/production/00000000-0000-0000-0000-000000000000/qc-done",
		nil, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown run, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProductionUpdateZeroTargetAndCommentClear(t *testing.T) {
	r, services := setupEnv(t)
	bom := seedCompoundBOM(t, services)
	token := testutil.DefaultTestToken()

	create := map[string]interface{}{
		"bom":        bom.ID,
		"part_names": []map[string]interface{}{{"est_qty": 200}},
		"raw_materials": []map[string]interface{}{
			{"name": "生胶", "comment": "头道投料"},
		},
	}
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/production", create, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}
	runID := obj(data(testutil.ParseResponse(w)), "production")["_id"].(string)

	// 目标产出量改回0：整单归零重算；备注提交空串应清空
	update := map[string]interface{}{
		"_id":        runID,
		"bom":        bom.ID,
		"part_names": []map[string]interface{}{{"est_qty": 0}},
		"raw_materials": []map[string]interface{}{
			{"name": "生胶", "comment": ""},
		},
	}
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/production", update, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", w.Code, w.Body.String())
	}
	run := obj(data(testutil.ParseResponse(w)), "production")
	out := arr(run, "part_names")[0].(map[string]interface{})
	if out["est_qty"].(float64) != 0 {
		t.Fatalf("expected output est 0, got %v", out["est_qty"])
	}
	raw := arr(run, "raw_materials")[0].(map[string]interface{})
	if raw["est_qty"].(float64) != 0 || raw["remain_qty"].(float64) != 0 {
		t.Fatalf("expected zeroed line, got %v", raw)
	}
	if c, ok := raw["comment"].(string); ok && c != "" {
		t.Fatalf("expected cleared comment, got %q", c)
	}

	// 载荷不带 est_qty 时不触发重算
	update["part_names"] = []map[string]interface{}{{"prod_qty": 0}}
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/production", update, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", w.Code, w.Body.String())
	}
	run = obj(data(testutil.ParseResponse(w)), "production")
	raw = arr(run, "raw_materials")[0].(map[string]interface{})
	if raw["est_qty"].(float64) != 0 {
		t.Fatalf("absent est_qty must not rescale, got %v", raw["est_qty"])
	}
}

func TestProductionPermissions(t *testing.T) {
	r, _ := setupEnv(t)

	// 无令牌
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/production/all", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	// 只有质检权限的账号进不了生产接口
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/production/all", nil,
		testutil.OperatorToken("quality check"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// 生产权限放行，质检接口拒绝
	opToken := testutil.OperatorToken("production start")
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/production/all", nil, opToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/quality/pending", nil, opToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on quality, got %d", w.Code)
	}
}
