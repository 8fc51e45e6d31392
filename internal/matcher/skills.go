package matcher

import (
	"regexp"
	"strings"
)

// 技能别名归一化表：常见写法 -> 规范标签
// 固定的静态映射，扩充属于数据变更而非代码变更
var skillAliases = map[string]string{
	"node.js": "nodejs", "node js": "nodejs",
	"next.js": "nextjs", "next js": "nextjs",
	"c#": "csharp", "c sharp": "csharp",
	"c++": "cplusplus", "c plus plus": "cplusplus",
	".net": "dotnet", "dot net": "dotnet",
	"ci/cd": "cicd", "ci cd": "cicd",
}

// 规范标签 -> 额外可接受的token序列变体
var skillVariantTable = map[string][][]string{
	"nodejs":    {{"node", "js"}},
	"nextjs":    {{"next", "js"}},
	"csharp":    {{"c#"}, {"c", "sharp"}},
	"cplusplus": {{"c++"}, {"cpp"}, {"c", "plus", "plus"}},
	"dotnet":    {{".net"}, {"dot", "net"}},
	"cicd":      {{"ci", "cd"}, {"ci/cd"}},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// 保留 + 和 #，让 "c++"/"c#" 作为独立token存活
	nonTokenRe = regexp.MustCompile(`[^a-z0-9#+]+`)
)

// NormalizeSkill 归一化单个技能标签：小写、去首尾空白、压缩内部空白、别名归一
func NormalizeSkill(s string) string {
	v := whitespaceRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
	if canonical, ok := skillAliases[v]; ok {
		return canonical
	}
	return v
}

// Tokenize 将简历文本切分为小写字母数字token序列
func Tokenize(text string) []string {
	parts := nonTokenRe.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// skillVariants 生成一个规范技能的全部可接受token序列变体（已去重）
func skillVariants(canonical string) [][]string {
	s := NormalizeSkill(canonical)

	var variants [][]string
	if strings.Contains(s, " ") {
		variants = append(variants, strings.Fields(s))
	} else {
		variants = append(variants, []string{s})
	}
	variants = append(variants, skillVariantTable[s]...)

	seen := make(map[string]struct{}, len(variants))
	out := make([][]string, 0, len(variants))
	for _, v := range variants {
		key := strings.Join(v, " ")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// tokenIndex 简历token的查询索引：
// 单token技能查成员集合，多token短语查空格连接串的连续子串
type tokenIndex struct {
	set    map[string]struct{}
	joined string
}

func newTokenIndex(tokens []string) *tokenIndex {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return &tokenIndex{
		set:    set,
		joined: " " + strings.Join(tokens, " ") + " ",
	}
}

// has 判断某个规范技能是否出现在简历中（任一变体命中即算）
func (ti *tokenIndex) has(canonical string) bool {
	for _, v := range skillVariants(canonical) {
		if len(v) == 0 {
			continue
		}
		if len(v) == 1 {
			if _, ok := ti.set[v[0]]; ok {
				return true
			}
			continue
		}
		phrase := " " + strings.Join(v, " ") + " "
		if strings.Contains(ti.joined, phrase) {
			return true
		}
	}
	return false
}

// MatchSkills 判断请求技能在简历文本中的命中情况
// 两个返回列表都保持（归一化后的）请求顺序；matched ∪ missing = 归一化请求列表
func MatchSkills(resumeText string, skills []string) (matched, missing []string) {
	index := newTokenIndex(Tokenize(resumeText))

	requested := make([]string, 0, len(skills))
	for _, s := range skills {
		if v := NormalizeSkill(s); v != "" {
			requested = append(requested, v)
		}
	}

	matched = make([]string, 0, len(requested))
	missing = make([]string, 0, len(requested))
	for _, s := range requested {
		if index.has(s) {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	return matched, missing
}
