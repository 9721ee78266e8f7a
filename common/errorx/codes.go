package errorx

// 错误码规范：
// 0       - 成功
// 1xxx    - 通用错误
// 2xxx    - 用户服务错误
// 3xxx    - 活动服务错误
// 4xxx    - 通知服务错误

const (
	CodeSuccess            = 0    // 成功
	CodeInternalError      = 1000 // 内部服务器错误
	CodeInvalidParams      = 1001 // 参数校验失败
	CodeUnauthorized       = 1002 // 未授权访问
	CodeForbidden          = 1003 // 禁止访问
	CodeNotFound           = 1004 // 资源不存在
	CodeTooManyRequests    = 1005 // 请求过于频繁
	CodeServiceUnavailable = 1006 // 服务暂不可用
	CodeTimeout            = 1007 // 请求超时
	CodeDBError            = 1008 // 数据库错误
	CodeCacheError         = 1009 // 缓存错误
	CodeUnknownAction      = 1011 // 未知操作

	// 用户服务 2001-2099
	CodeLoginRequired  = 2001 // 需要登录
	CodeTokenInvalid   = 2002 // Token无效
	CodeTokenExpired   = 2003 // Token已过期
	CodeUserNotFound   = 2004 // 用户不存在
	CodeWechatLogin    = 2005 // 微信登录失败
	CodeSenderNotFound = 2006 // 发送者不存在

	// 活动服务 3001-3099
	CodeActivityNotFound    = 3001 // 活动不存在
	CodeActivityNotApproved = 3002 // 活动未审核通过
	CodeActivityDeleted     = 3003 // 活动已删除
	CodeActivityFull        = 3004 // 活动已满员
	CodeAlreadyJoined       = 3005 // 已参加
	CodeNotJoined           = 3006 // 未参加
	CodeAlreadyFavorited    = 3007 // 已收藏
	CodeNotFavorited        = 3008 // 未收藏
	CodeActivityPermission  = 3009 // 无权操作活动
	CodeActivityTypeInvalid = 3010 // 不支持的活动类型

	// 通知服务 4001-4099
	CodeNotificationNotFound   = 4001 // 通知不存在
	CodeNotificationPermission = 4002 // 无权操作该通知
	CodeReceiverNotFound       = 4003 // 接收者不存在
)

// codeMessages 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:                "success",
	CodeInternalError:          "内部服务器错误",
	CodeInvalidParams:          "参数校验失败",
	CodeUnauthorized:           "未授权访问",
	CodeForbidden:              "禁止访问",
	CodeNotFound:               "资源不存在",
	CodeTooManyRequests:        "请求过于频繁，请稍后再试",
	CodeServiceUnavailable:     "服务暂不可用",
	CodeTimeout:                "请求超时",
	CodeDBError:                "数据库错误",
	CodeCacheError:             "缓存错误",
	CodeUnknownAction:          "未知操作",
	CodeLoginRequired:          "请先登录",
	CodeTokenInvalid:           "登录状态无效",
	CodeTokenExpired:           "登录已过期",
	CodeUserNotFound:           "用户不存在",
	CodeWechatLogin:            "微信登录失败",
	CodeSenderNotFound:         "发送者不存在",
	CodeActivityNotFound:       "活动不存在",
	CodeActivityNotApproved:    "活动未审核通过，无法参加",
	CodeActivityDeleted:        "活动已删除，无法参加",
	CodeActivityFull:           "活动已满员",
	CodeAlreadyJoined:          "您已参加该活动",
	CodeNotJoined:              "您未参加该活动",
	CodeAlreadyFavorited:       "您已收藏该活动",
	CodeNotFavorited:           "您未收藏该活动",
	CodeActivityPermission:     "无权操作该活动",
	CodeActivityTypeInvalid:    "不支持的活动类型",
	CodeNotificationNotFound:   "通知不存在",
	CodeNotificationPermission: "无权操作该通知",
	CodeReceiverNotFound:       "接收者不存在",
}

// Kind 错误大类，调用方按大类处理而不必匹配 message
type Kind string

const (
	KindNone             Kind = ""
	KindInvalidArgument  Kind = "InvalidArgument"
	KindNotFound         Kind = "NotFound"
	KindInvalidState     Kind = "InvalidState"
	KindCapacityExceeded Kind = "CapacityExceeded"
	KindConflict         Kind = "Conflict"
	KindForbidden        Kind = "Forbidden"
	KindUnauthorized     Kind = "Unauthorized"
	KindInternal         Kind = "Internal"
)

var codeKinds = map[int]Kind{
	CodeSuccess:                KindNone,
	CodeInvalidParams:          KindInvalidArgument,
	CodeUnknownAction:          KindInvalidArgument,
	CodeActivityTypeInvalid:    KindInvalidArgument,
	CodeNotFound:               KindNotFound,
	CodeUserNotFound:           KindNotFound,
	CodeSenderNotFound:         KindNotFound,
	CodeActivityNotFound:       KindNotFound,
	CodeNotJoined:              KindNotFound,
	CodeNotFavorited:           KindNotFound,
	CodeNotificationNotFound:   KindNotFound,
	CodeReceiverNotFound:       KindNotFound,
	CodeActivityNotApproved:    KindInvalidState,
	CodeActivityDeleted:        KindInvalidState,
	CodeActivityFull:           KindCapacityExceeded,
	CodeAlreadyJoined:          KindConflict,
	CodeAlreadyFavorited:       KindConflict,
	CodeForbidden:              KindForbidden,
	CodeActivityPermission:     KindForbidden,
	CodeNotificationPermission: KindForbidden,
	CodeUnauthorized:           KindUnauthorized,
	CodeLoginRequired:          KindUnauthorized,
	CodeTokenInvalid:           KindUnauthorized,
	CodeTokenExpired:           KindUnauthorized,
	CodeWechatLogin:            KindUnauthorized,
}

// GetMessage 根据错误码获取默认消息
func GetMessage(code int) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetKind 根据错误码获取错误大类，未登记的错误码一律视为内部错误
func GetKind(code int) Kind {
	if kind, ok := codeKinds[code]; ok {
		return kind
	}
	return KindInternal
}

// IsValidCode 判断是否为已登记的业务错误码
func IsValidCode(code int) bool {
	_, exists := codeMessages[code]
	return exists
}
