package model

// GenerationLog 生成接口调用记录
type GenerationLog struct {
	BaseModel

	// 关联
	RequestID string `gorm:"size:64;uniqueIndex;comment:请求编号"`

	// 调用信息
	Endpoint  string `gorm:"size:32;index;comment:接口(generate/poster)"`
	Provider  string `gorm:"size:64;comment:上游服务"`
	ModelName string `gorm:"size:64;comment:模型名称"`

	// 结果
	DurationMs int64   `gorm:"comment:耗时(毫秒)"`
	StatusCode int     `gorm:"index;comment:HTTP状态码"`
	ErrorType  *string `gorm:"size:64;comment:错误分类"`
	ErrorMsg   string  `gorm:"size:1024;comment:错误信息"`
}

func (GenerationLog) TableName() string {
	return "generation_logs"
}

// ==================== 接口常量 ====================

const (
	EndpointGenerate = "generate"
	EndpointPoster   = "poster"
)
