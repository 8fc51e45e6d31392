package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// FileModulePrefix 文件模块
	FileModulePrefix = "file"

	// EntityText 文本实体
	EntityText = "text"

	// KeyResumeText 简历提取文本缓存 (HASH: text / source_mtime)
	// 格式: app:file:text:{fileName}
	KeyResumeText = AppPrefix + ":" + FileModulePrefix + ":" + EntityText + ":%s"
)
