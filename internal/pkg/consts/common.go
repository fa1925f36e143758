package consts

const (
	DraftTypeDocument = "document"
	DraftTypeVideo    = "video"
)

// DayLayout 日桶使用的日期格式
const DayLayout = "2006-01-02"

const (
	EnvProduction = "production"
)
