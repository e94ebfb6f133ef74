package dto

// EndpointUsage 单个接口的调用统计
type EndpointUsage struct {
	Endpoint      string  `json:"endpoint"`
	TotalCalls    int64   `json:"totalCalls"`
	SuccessCount  int64   `json:"successCount"`
	FailedCount   int64   `json:"failedCount"`
	TimeoutCount  int64   `json:"timeoutCount"`
	AvgDurationMs float64 `json:"avgDurationMs"`
}

// UsageStatsResp 调用统计响应
type UsageStatsResp struct {
	Days      int             `json:"days"`
	Since     int64           `json:"since"`
	Endpoints []EndpointUsage `json:"endpoints"`
}
