package calculator

import (
	"strings"

	"github.com/awissink/latedays/internal/model"
)

// RosterIndex 花名册成员判定
type RosterIndex interface {
	Has(id string) bool
}

// IdentityStrategy 从 Codio 行推导候选学号
type IdentityStrategy interface {
	Name() string
	Candidate(sub *model.ProgrammingSubmission) string
}

// NameTokenStrategy "first name" 列小写后作为学号
type NameTokenStrategy struct{}

func (NameTokenStrategy) Name() string { return "name_token" }

func (NameTokenStrategy) Candidate(sub *model.ProgrammingSubmission) string {
	return strings.ToLower(strings.TrimSpace(sub.NameToken))
}

// EmailPrefixStrategy 邮箱 @ 之前的部分作为学号
type EmailPrefixStrategy struct{}

func (EmailPrefixStrategy) Name() string { return "email_prefix" }

func (EmailPrefixStrategy) Candidate(sub *model.ProgrammingSubmission) string {
	email := strings.TrimSpace(sub.Email)
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// DefaultStrategies 默认解析顺序：姓名片段优先，其次邮箱前缀
func DefaultStrategies() []IdentityStrategy {
	return []IdentityStrategy{NameTokenStrategy{}, EmailPrefixStrategy{}}
}

// Resolution 学号解析结果
type Resolution struct {
	ID       string
	Strategy string
	Resolved bool
}

// IdentityResolver 按顺序尝试各策略，第一个命中花名册的候选胜出
type IdentityResolver struct {
	roster     RosterIndex
	strategies []IdentityStrategy
}

// NewIdentityResolver 创建学号解析器
func NewIdentityResolver(roster RosterIndex, strategies ...IdentityStrategy) *IdentityResolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &IdentityResolver{roster: roster, strategies: strategies}
}

// Resolve 解析学号；均未命中时 Resolved=false
func (r *IdentityResolver) Resolve(sub *model.ProgrammingSubmission) Resolution {
	for _, s := range r.strategies {
		id := s.Candidate(sub)
		if id == "" {
			continue
		}
		if r.roster.Has(id) {
			return Resolution{ID: id, Strategy: s.Name(), Resolved: true}
		}
	}
	return Resolution{}
}
