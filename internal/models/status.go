package models

import "errors"

// Status — статус модерации комментария.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusSpam     Status = "spam"
	StatusDeleted  Status = "deleted"
)

// ErrInvalidTransition — переход между статусами запрещён.
var ErrInvalidTransition = errors.New("invalid status transition")

// ParseStatus проверяет строковое значение статуса.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusSpam, StatusDeleted:
		return st, true
	default:
		return "", false
	}
}

// Transition проверяет переход from -> to.
//
// Правила:
//   - переход в текущий статус — no-op (changed=false, err=nil);
//   - deleted терминален: любые другие переходы из него запрещены;
//   - в pending вернуться нельзя, это только начальное состояние;
//   - pending -> approved|spam|deleted, approved <-> spam, approved|spam -> deleted разрешены.
func Transition(from, to Status) (changed bool, err error) {
	if _, ok := ParseStatus(string(to)); !ok {
		return false, ErrInvalidTransition
	}

	if from == to {
		return false, nil
	}

	switch from {
	case StatusDeleted:
		return false, ErrInvalidTransition
	case StatusPending, StatusApproved, StatusSpam:
		if to == StatusPending {
			return false, ErrInvalidTransition
		}
		return true, nil
	default:
		return false, ErrInvalidTransition
	}
}
