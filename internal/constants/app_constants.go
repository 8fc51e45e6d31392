package constants

const (
	// MaxOverrideYears 经验年限覆盖值的上限（含），超出视为非法输入
	MaxOverrideYears = 80.0

	// MaxRangeSpanYears 日期区间的最大跨度（年），超出视为乱码/格式错误数据
	MaxRangeSpanYears = 80

	// CachedTextSuffix 提取文本缓存文件的后缀
	CachedTextSuffix = ".txt"

	// MetadataSuffix 简历元数据记录文件的后缀
	MetadataSuffix = ".json"

	// OverrideField 元数据记录中经验覆盖值的字段名
	OverrideField = "experience_years_override"
)
