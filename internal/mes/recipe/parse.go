// Package recipe 实现配方到生产记录的派生规则：
// 配方解析 → 用量换算 → 消耗跟踪 → 工序状态 → 送检闸门。
// 全部为纯函数，不做任何I/O，数据库与HTTP层只负责搬运。
package recipe

import (
	"math"
	"strconv"
	"strings"
)

// Epsilon 数量比较的浮点容差
const Epsilon = 1e-6

// ParseQty 宽松解析数量：空串、非法输入一律按0处理，
// 不阻塞录入中的半截数字
func ParseQty(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 四舍五入到2位小数。只用于 remain_qty，
// est_qty/base_qty 保持全精度，避免反复重算时累积舍入误差
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
