package types

// SkillRequest 一次匹配请求：技能清单（保持请求顺序）+ 最低经验年限门槛
type SkillRequest struct {
	Skills        []string `json:"skills"`
	MinExperience float64  `json:"min_experience"`
}

// MatchResult 单份简历的匹配结果
// 三个经验字段均可能缺失（JSON中为null）：
//   - ExperienceFound 从简历文本推断出的经验年限（覆盖前的原始值）
//   - ExperienceOverride 人工设置的覆盖值（若有）
//   - ExperienceUsed 实际参与打分的值（覆盖优先，否则为推断值）
type MatchResult struct {
	FileName           string   `json:"file_name"`
	Match              float64  `json:"match"`
	MatchedSkills      []string `json:"matched_skills"`
	MissingSkills      []string `json:"missing_skills"`
	ExperienceFound    *float64 `json:"experience_found"`
	ExperienceOverride *float64 `json:"experience_override"`
	ExperienceUsed     *float64 `json:"experience_used"`
}

// MatchResponse 匹配接口的响应体，结果已按分数降序排列
type MatchResponse struct {
	Results []MatchResult `json:"results"`
}

// ResumeMetadata 单份简历的元数据读取响应
type ResumeMetadata struct {
	FileName                string   `json:"file_name"`
	ExperienceYearsOverride *float64 `json:"experience_years_override"`
}

// OverrideUpdateRequest 经验覆盖值更新请求，null表示清除覆盖
type OverrideUpdateRequest struct {
	ExperienceYearsOverride *float64 `json:"experience_years_override"`
}

// UploadResponse 简历上传响应
type UploadResponse struct {
	SubmissionID string `json:"submission_id"`
	FileName     string `json:"file_name"`
	Status       string `json:"status"`
}

// ListResponse 简历列表响应，顺序与存储目录的列举顺序一致
type ListResponse struct {
	Files []string `json:"files"`
}
