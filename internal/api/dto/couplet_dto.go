package dto

// ==================== 请求 DTO ====================

// GenerateCoupletReq 春联生成请求（已校验、已规范化）
type GenerateCoupletReq struct {
	Theme    string `json:"theme"`
	Style    string `json:"style"`
	Industry string `json:"industry"`
	Tone     string `json:"tone"`
	// nil 表示未提供；列表形式提交时可能为空切片
	TabooWords []string `json:"tabooWords,omitempty"`
}

// PosterReq 海报生成请求
type PosterReq struct {
	Theme      string  `json:"theme"`
	Style      *string `json:"style,omitempty"`
	TopLine    string  `json:"topLine"`
	BottomLine string  `json:"bottomLine"`
	Horizontal string  `json:"horizontal"`
}

// ==================== 结果 DTO ====================

// CoupletResult 模型生成的春联
type CoupletResult struct {
	TopLine     string   `json:"topLine"`
	BottomLine  string   `json:"bottomLine"`
	Horizontal  string   `json:"horizontal"`
	Explanation string   `json:"explanation"`
	StyleTags   []string `json:"styleTags"`
}

// PosterResult 海报结果，ImageBase64 与 ImageURL 至少其一非空
type PosterResult struct {
	ImageBase64 string `json:"imageBase64,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ArchiveURL  string `json:"archiveUrl,omitempty"`
}

// ==================== 响应信封 ====================

// SuccessResp 成功响应
type SuccessResp[T any] struct {
	RequestID string `json:"requestId"`
	Data      T      `json:"data"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// ErrorResp 失败响应
type ErrorResp struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

// CoupletResp 春联生成成功响应（文档用）
type CoupletResp = SuccessResp[CoupletResult]

// PosterResp 海报生成成功响应（文档用）
type PosterResp = SuccessResp[PosterResult]
