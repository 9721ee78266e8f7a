package model

import (
	"strings"
	"time"

	"haojuleling/common/database"
)

// 活动状态常量

const (
	StatusPending   = "pending"   // 待审核
	StatusApproved  = "approved"  // 已通过
	StatusRejected  = "rejected"  // 已拒绝
	StatusCancelled = "cancelled" // 已取消
)

// StatusText 状态文本映射
var StatusText = map[string]string{
	StatusPending:   "待审核",
	StatusApproved:  "已通过",
	StatusRejected:  "已拒绝",
	StatusCancelled: "已取消",
}

// ValidStatus 是否为已知的活动状态
func ValidStatus(status string) bool {
	_, ok := StatusText[status]
	return ok
}

// 报名状态常量

const (
	EnrollStatusEnrolled  = "enrolled"  // 已报名
	EnrollStatusCancelled = "cancelled" // 已取消
)

// 分页参数

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
	MaxPage         = 100 // 禁止超过100页
)

// Pagination 分页请求
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize 规范化分页参数
func (p *Pagination) Normalize() {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset 计算偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ListQuery 活动列表查询条件，所有条件 AND 组合
type ListQuery struct {
	Pagination

	IsHot         *bool
	IsRecommend   *bool
	IsCommunity   *bool
	SearchKeyword string // 标题模糊匹配，不区分大小写
	Type          string
	Status        string
	CategoryID    string
	CreatorID     string
	StartFrom     *time.Time // startTime >=
	StartTo       *time.Time // startTime <=

	// 软删除可见性
	ViewerID      string // 调用者可以看到自己创建的已删除活动
	IncludeDelete bool   // 管理员可以看到全部已删除活动
}

// ListResult 活动列表结果
type ListResult struct {
	List     []Activity
	Total    int64
	Page     int
	PageSize int
}

// likeEscapeChar LIKE 转义字符，MySQL 与 SQLite 通用
const likeEscapeChar = "!"

// escapeKeyword 转义 LIKE 通配符
func escapeKeyword(keyword string) string {
	// 必须先转义转义字符本身
	keyword = strings.ReplaceAll(keyword, likeEscapeChar, likeEscapeChar+likeEscapeChar)
	keyword = strings.ReplaceAll(keyword, "%", likeEscapeChar+"%")
	keyword = strings.ReplaceAll(keyword, "_", likeEscapeChar+"_")
	return keyword
}

// isDuplicateErr 唯一索引冲突
func isDuplicateErr(err error) bool {
	return database.IsDuplicateKeyErr(err)
}
