package matcher

// ComposeScore 将技能命中率与经验缺口合成为 0-100 的匹配分
//
// 基础分 = 命中数/请求总数 * 100。
// 经验惩罚为平滑曲线而非硬阈值：
//   - minExperience == 0 时不惩罚
//   - experienceUsed >= minExperience 时系数为1.0
//   - 否则系数 = 0.5 + 0.5 * clamp(experienceUsed/minExperience, 0, 1)，
//     即零相关经验时减半，随经验接近门槛线性恢复到1.0
func ComposeScore(matchedCount, totalRequested int, minExperience, experienceUsed float64) float64 {
	total := totalRequested
	if total < 1 {
		total = 1
	}
	base := float64(matchedCount) / float64(total) * 100

	factor := 1.0
	if minExperience > 0 && experienceUsed < minExperience {
		ratio := experienceUsed / minExperience
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
		factor = 0.5 + 0.5*ratio
	}

	score := base * factor
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
