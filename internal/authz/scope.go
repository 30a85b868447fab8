package authz

import (
	sq "github.com/Masterminds/squirrel"
)

type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeOwn
	ScopeDepartment
)

// Scope - ограничение видимости строк для принципала. Накладывается до пользовательских фильтров.
type Scope struct {
	Kind         ScopeKind
	UserID       uint64
	DepartmentID uint64
}

// ScopeColumns - колонки владельца и его департамента в конкретном запросе.
type ScopeColumns struct {
	Owner      string
	Department string
}

var (
	PaperScopeColumns = ScopeColumns{Owner: "p.user_id", Department: "u.department_id"}
	UserScopeColumns  = ScopeColumns{Owner: "u.id", Department: "u.department_id"}
)

// ScopeFor: user -> свои строки, secretary -> свой департамент
// (без департамента - только свои), manager/admin -> без ограничений.
func ScopeFor(p *Principal) Scope {
	switch p.Role {
	case RoleAdmin, RoleManager:
		return Scope{Kind: ScopeAll}
	case RoleSecretary:
		if p.DepartmentID != nil {
			return Scope{Kind: ScopeDepartment, UserID: p.ID, DepartmentID: *p.DepartmentID}
		}
	}
	return Scope{Kind: ScopeOwn, UserID: p.ID}
}

func (s Scope) Unrestricted() bool {
	return s.Kind == ScopeAll
}

// Predicate рендерит ограничение в squirrel-условие.
func (s Scope) Predicate(cols ScopeColumns) sq.Sqlizer {
	switch s.Kind {
	case ScopeOwn:
		return sq.Eq{cols.Owner: s.UserID}
	case ScopeDepartment:
		return sq.Eq{cols.Department: s.DepartmentID}
	}
	return sq.Expr("TRUE")
}

// Apply объединяет ограничение с пользовательскими фильтрами через AND:
// фильтры могут только сузить выборку.
func (s Scope) Apply(cols ScopeColumns, filters ...sq.Sqlizer) sq.And {
	where := sq.And{s.Predicate(cols)}
	for _, f := range filters {
		if f != nil {
			where = append(where, f)
		}
	}
	return where
}
