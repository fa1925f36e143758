package dto

// ViewIncrementDTO 计数请求：ns+id 或完整 key 二选一
type ViewIncrementDTO struct {
	NS  string `json:"ns" form:"ns"`
	ID  string `json:"id" form:"id"`
	Key string `json:"key" form:"key"`
}

// ViewCountDTO 计数返回
type ViewCountDTO struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// FlushResultDTO 一次冲账的结果
type FlushResultDTO struct {
	FlushedTotals int `json:"flushedTotals"`
	FlushedDaily  int `json:"flushedDaily"`
}

// FlushStatusDTO 冲账遥测
type FlushStatusDTO struct {
	LastAttemptAt          string `json:"lastAttemptAt,omitempty"`
	LastSuccessAt          string `json:"lastSuccessAt,omitempty"`
	ConsecutiveFailures    int    `json:"consecutiveFailures"`
	LastError              string `json:"lastError,omitempty"`
	LastFlushedTotals      int    `json:"lastFlushedTotals"`
	LastFlushedDaily       int    `json:"lastFlushedDaily"`
	LastDurationMs         int64  `json:"lastDurationMs"`
	StalenessWindowMinutes int    `json:"stalenessWindowMinutes"`
	IsStale                bool   `json:"isStale"`
}
