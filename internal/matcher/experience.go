package matcher

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"resume-match-go/internal/constants"
)

// 经验年限推断：两个互补的启发式信号
//  1. 显式提及，如 "5+ years of experience"、"2.5 yrs"
//  2. 从任职时间段重建，如 "Jan 2019 – Present"、"2020 - 2022"
//
// 两者都不可靠，因此取两者中较大的一个作为乐观估计（产品规则，不做平均）

var explicitYearsRe = regexp.MustCompile(`(\d{1,2}(?:\.\d{1,2})?)\s*\+?\s*(?:years?|yrs?)\b`)

// dateTokenPattern 单个日期token：present标记 / "Month YYYY" / "MM/YYYY" / 裸四位年份
const dateTokenPattern = `(?:present|current|now|(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+\d{4}|\d{1,2}/\d{4}|\d{4})`

var (
	dateRangeRe = regexp.MustCompile(`(` + dateTokenPattern + `)\s*(?:-|–|—|to)\s*(` + dateTokenPattern + `)`)
	mmYYYYRe    = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	monthYYYYRe = regexp.MustCompile(`^([a-z]{3,9})\s+(\d{4})$`)
	bareYearRe  = regexp.MustCompile(`^\d{4}$`)
)

// 月份名 -> 0起始的月份序号
var monthsTable = map[string]int{
	"jan": 0, "january": 0,
	"feb": 1, "february": 1,
	"mar": 2, "march": 2,
	"apr": 3, "april": 3,
	"may": 4,
	"jun": 5, "june": 5,
	"jul": 6, "july": 6,
	"aug": 7, "august": 7,
	"sep": 8, "sept": 8, "september": 8,
	"oct": 9, "october": 9,
	"nov": 10, "november": 10,
	"dec": 11, "december": 11,
}

// monthYear 日历月，month为0起始
type monthYear struct {
	year  int
	month int
}

// monthRange 以绝对月序号(year*12+month)表示的闭区间
type monthRange struct {
	start int
	end   int
}

// InferYears 从简历文本推断经验年限
// 第二个返回值为false表示两种信号都不存在
func InferYears(text string, now time.Time) (float64, bool) {
	t := strings.ToLower(text)

	explicit, okExplicit := explicitYears(t)
	fromDates, okDates := dateRangeYears(t, now)

	switch {
	case !okExplicit && !okDates:
		return 0, false
	case !okExplicit:
		return fromDates, true
	case !okDates:
		return explicit, true
	default:
		return math.Max(explicit, fromDates), true
	}
}

// explicitYears 扫描 "N years" / "N+ yrs" 形式的显式提及，取最大值
func explicitYears(text string) (float64, bool) {
	var max float64
	found := false
	for _, m := range explicitYearsRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil || math.IsInf(n, 0) {
			continue
		}
		if !found || n > max {
			max = n
			found = true
		}
	}
	return max, found
}

// dateRangeYears 从 "Jan 2021 - Present" 这类时间段重建总经验
// 区间按月合并去重后求和，避免重叠任职被重复计算
func dateRangeYears(text string, now time.Time) (float64, bool) {
	var ranges []monthRange
	for _, m := range dateRangeRe.FindAllStringSubmatch(text, -1) {
		a, okA := parseDateToken(m[1], now)
		b, okB := parseDateToken(m[2], now)
		if !okA || !okB {
			continue
		}
		r, ok := normalizeRange(m[1], m[2], a, b)
		if !ok {
			continue
		}
		ranges = append(ranges, r)
	}

	if len(ranges) == 0 {
		return 0, false
	}

	months := 0
	for _, r := range mergeMonthRanges(ranges) {
		months += r.end - r.start + 1
	}

	years := math.Round(float64(months)/12*10) / 10
	if years <= 0 || math.IsInf(years, 0) || math.IsNaN(years) {
		return 0, false
	}
	return years, true
}

// parseDateToken 解析单个日期token
func parseDateToken(s string, now time.Time) (monthYear, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return monthYear{}, false
	}

	if strings.Contains(v, "present") || strings.Contains(v, "current") || strings.Contains(v, "now") {
		return monthYear{year: now.Year(), month: int(now.Month()) - 1}, true
	}

	// MM/YYYY
	if m := mmYYYYRe.FindStringSubmatch(v); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return monthYear{year: year, month: month - 1}, true
		}
		return monthYear{}, false
	}

	// Month YYYY
	if m := monthYYYYRe.FindStringSubmatch(v); m != nil {
		month, ok := monthsTable[m[1]]
		if !ok {
			return monthYear{}, false
		}
		year, _ := strconv.Atoi(m[2])
		return monthYear{year: year, month: month}, true
	}

	// YYYY
	if bareYearRe.MatchString(v) {
		year, _ := strconv.Atoi(v)
		return monthYear{year: year, month: 0}, true
	}

	return monthYear{}, false
}

// normalizeRange 将区间端点归一化为绝对月序号
// 裸年份作为起点取1月，作为终点取12月；起止颠倒时交换；超长区间视为乱码丢弃
func normalizeRange(rawStart, rawEnd string, a, b monthYear) (monthRange, bool) {
	start := a.year*12 + a.month
	end := b.year*12 + b.month

	if bareYearRe.MatchString(strings.TrimSpace(rawEnd)) {
		year, _ := strconv.Atoi(strings.TrimSpace(rawEnd))
		end = year*12 + 11
	}
	if bareYearRe.MatchString(strings.TrimSpace(rawStart)) {
		year, _ := strconv.Atoi(strings.TrimSpace(rawStart))
		start = year * 12
	}

	if end < start {
		start, end = end, start
	}
	if end-start > 12*constants.MaxRangeSpanYears {
		return monthRange{}, false
	}
	return monthRange{start: start, end: end}, true
}

// mergeMonthRanges 按起点排序后合并重叠或相邻（间隔不超过1个月）的区间
func mergeMonthRanges(ranges []monthRange) []monthRange {
	sorted := make([]monthRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].start < sorted[j].start
	})

	merged := make([]monthRange, 0, len(sorted))
	for _, r := range sorted {
		if len(merged) == 0 {
			merged = append(merged, r)
			continue
		}
		last := &merged[len(merged)-1]
		if r.start <= last.end+1 {
			if r.end > last.end {
				last.end = r.end
			}
		} else {
			merged = append(merged, r)
		}
	}
	return merged
}
