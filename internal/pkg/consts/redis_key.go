package consts

const (
	// ViewDirtyKey 全局脏 key 集合，成员为完整的 views:* key
	ViewDirtyKey = "views:dirty"

	// ViewDailyKeyPrefix 按天分桶的计数 key：views:daily:<yyyy-mm-dd>:<key>
	ViewDailyKeyPrefix = "views:daily:"

	// ViewDailyDirtyPrefix 按天的脏 key 集合：views:daily:dirty:<yyyy-mm-dd>
	ViewDailyDirtyPrefix = "views:daily:dirty:"

	// ViewDateIndexKey 存在未落库日桶的日期索引集合
	ViewDateIndexKey = "views:daily:index"

	// ViewFlushTelemetryKey 落库任务遥测 hash
	ViewFlushTelemetryKey = "views:flush:telemetry"

	// ViewRateLimitPrefix 计数接口限流窗口
	ViewRateLimitPrefix = "ratelimit:views:"

	// ViewRateLimitAnonKey 无法识别身份的客户端共享一个更严格的桶
	ViewRateLimitAnonKey = "ratelimit:views:anon"
)

const (
	TokenBlacklistPrefix = "token:blacklist:"
)
