package calculator

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DeadlineLayout 截止时间字符串格式（年-月-日-时:分:秒）
const DeadlineLayout = "2006-01-02-15:04:05"

// Policy 迟交计算口径：截止时间、时区与宽限期
type Policy struct {
	GraceHours int
	// deadline 截止时间（墙上时间，位于 location）
	deadline time.Time
	location *time.Location
	// deadlineWithGrace 截止时间 + 宽限期
	deadlineWithGrace time.Time
}

// NewPolicy 创建计算口径；宽限小时数加在墙上时间上后再定位到时区
func NewPolicy(deadline string, location *time.Location, graceHours int) (*Policy, error) {
	if location == nil {
		return nil, fmt.Errorf("deadline timezone is required")
	}
	if graceHours < 0 {
		return nil, fmt.Errorf("grace period must not be negative: %d", graceHours)
	}

	wall, err := time.Parse(DeadlineLayout, deadline)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q (want %s): %w", deadline, DeadlineLayout, err)
	}

	graced := wall.Add(time.Duration(graceHours) * time.Hour)
	return &Policy{
		GraceHours:        graceHours,
		deadline:          localize(wall, location),
		location:          location,
		deadlineWithGrace: localize(graced, location),
	}, nil
}

// localize 把墙上时间定位到时区
// 夏令时回拨产生的重复时刻取标准时间；拨快跳过的时刻按前移 6 小时的偏移量推算
func localize(wall time.Time, loc *time.Location) time.Time {
	naive := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC)

	var candidates []time.Time
	seen := make(map[int]bool, 3)
	for _, near := range []time.Time{naive.Add(-24 * time.Hour), naive, naive.Add(24 * time.Hour)} {
		_, offset := near.In(loc).Zone()
		if seen[offset] {
			continue
		}
		seen[offset] = true
		t := naive.Add(-time.Duration(offset) * time.Second).In(loc)
		if sameWallClock(t, naive) {
			candidates = append(candidates, t)
		}
	}

	switch len(candidates) {
	case 0:
		return localize(naive.Add(-gapShift), loc).Add(gapShift)
	case 1:
		return candidates[0]
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })
	for _, t := range candidates {
		if !t.IsDST() {
			return t
		}
	}
	return candidates[0]
}

const gapShift = 6 * time.Hour

func sameWallClock(t, naive time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := naive.Date()
	return y1 == y2 && m1 == m2 && d1 == d2 &&
		t.Hour() == naive.Hour() && t.Minute() == naive.Minute() &&
		t.Second() == naive.Second() && t.Nanosecond() == naive.Nanosecond()
}

// Deadline 截止时间
func (p *Policy) Deadline() time.Time {
	return p.deadline
}

// DeadlineWithGrace 截止时间 + 宽限期
func (p *Policy) DeadlineWithGrace() time.Time {
	return p.deadlineWithGrace
}

// Location 截止时间所在时区
func (p *Policy) Location() *time.Location {
	return p.location
}

// WrittenLateDays 书面作业：小时向下取整，扣除宽限期后按 24 小时整除
func (p *Policy) WrittenLateDays(lateness time.Duration) int {
	hours := int64(math.Floor(lateness.Hours()))
	grace := int64(p.GraceHours)

	switch {
	case hours > 0 && hours < grace:
		hours = 0
	case hours >= grace:
		hours -= grace
	}

	days := floorDiv(hours, 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

// ProgrammingLateness 编程作业迟交时长（已转换到截止时区，非正数归零）
func (p *Policy) ProgrammingLateness(submitted time.Time) time.Duration {
	lateness := submitted.In(p.location).Sub(p.deadlineWithGrace)
	if lateness <= 0 {
		return 0
	}
	return lateness
}

// ProgrammingLateDays 编程作业：小时向上取整后按 24 小时整除（宽限期已计入截止时间）
func (p *Policy) ProgrammingLateDays(lateness time.Duration) int {
	if lateness <= 0 {
		return 0
	}
	hours := int64(math.Ceil(lateness.Hours()))
	return int(floorDiv(hours, 24))
}

// CapLateDays 应用人工上限：min(override, computed)；computed 缺失时保持缺失
func CapLateDays(computed, override *int) *int {
	if computed == nil {
		return nil
	}
	v := *computed
	if override != nil && *override < v {
		v = *override
	}
	return &v
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
