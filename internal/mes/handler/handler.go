package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bitfantasy/nimo-mes/internal/mes/recipe"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// Handlers MES HTTP处理器集合
type Handlers struct {
	BOM        *BOMHandler
	Production *ProductionHandler
	Quality    *QualityHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		BOM:        NewBOMHandler(services.BOM),
		Production: NewProductionHandler(services.Production),
		Quality:    NewQualityHandler(services.Quality),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: 10001, Message: message})
}

// Fail 按错误类型映射状态码：查无记录404、用量超限400、其余500。
// 服务端错误信息原样透传，便于操作员保留草稿后重试
func Fail(c *gin.Context, err error) {
	var nf *recipe.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, Response{Code: 10002, Message: err.Error()})
		return
	}
	var ve *recipe.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, Response{Code: 10003, Message: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{Code: 50001, Message: err.Error()})
}

// pageParams 解析 page/limit 查询参数
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
