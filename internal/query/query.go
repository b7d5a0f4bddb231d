// Package query реализует обобщённую постраничную выборку (query factory):
// разбор клиентских параметров по allow-list {limit, page, sort},
// базовый фильтр на равенство и результат (items, total, size).
//
// Клиентский ввод никогда не попадает в фильтр: всё, кроме limit/page/sort,
// отбрасывается, а базовый фильтр строит только сервисный слой.
package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidParams — limit/page не являются целыми числами или page вне диапазона.
	ErrInvalidParams = errors.New("invalid query params")
	// ErrUnknownField — поле фильтра/сортировки не описано бэкендом.
	ErrUnknownField = errors.New("unknown query field")
)

// Имена параметров, которые разрешено принимать от клиента.
const (
	ParamLimit = "limit"
	ParamPage  = "page"
	ParamSort  = "sort"
)

// Filter — базовый фильтр: логическое имя поля -> требуемое значение.
// Значение nil означает «поле не задано» (например, parent: nil у корней).
type Filter map[string]any

// SortField — одно поле сортировки.
type SortField struct {
	Field string
	Desc  bool
}

// Params — нормализованные параметры страницы.
// Limit всегда в [1, MaxLimit], Page >= 1.
type Params struct {
	Limit int64
	Page  int64
	Sort  []SortField
}

// Offset возвращает число пропускаемых записей.
func (p Params) Offset() int64 {
	if p.Page <= 1 {
		return 0
	}

	return (p.Page - 1) * p.Limit
}

// Options описывает правила разбора параметров для конкретной сущности.
type Options struct {
	DefaultLimit int64
	MaxLimit     int64
	// Sortable — логические поля, по которым клиенту разрешено сортировать.
	Sortable []string
	// DefaultSort применяется, если клиент не передал ни одного допустимого поля.
	DefaultSort []SortField
}

// Result — страница выборки.
//   - Total — число всех записей под фильтром, независимо от окна пагинации;
//   - Size — эффективный размер страницы (limit).
type Result[T any] struct {
	Items []T
	Total int64
	Size  int64
}

// FromValues выбирает из клиентских параметров только limit, page и sort.
//
// Правила:
//   - limit: по умолчанию DefaultLimit, минимум 1, максимум MaxLimit;
//   - page: по умолчанию 1, значения < 1 приводятся к 1;
//   - sort: "field,-other"; префикс "-" — по убыванию; поля вне Sortable игнорируются;
//   - нечисловые limit/page или page, при котором смещение переполняет int64 -> ErrInvalidParams.
func FromValues(values url.Values, opts Options) (Params, error) {
	const op = "query/FromValues"

	p := Params{
		Limit: opts.DefaultLimit,
		Page:  1,
	}

	if p.Limit < 1 {
		p.Limit = 1
	}

	if raw := strings.TrimSpace(values.Get(ParamLimit)); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Params{}, fmt.Errorf("%s: limit: %w", op, ErrInvalidParams)
		}

		p.Limit = n
	}

	if p.Limit < 1 {
		p.Limit = 1
	}

	if opts.MaxLimit > 0 && p.Limit > opts.MaxLimit {
		p.Limit = opts.MaxLimit
	}

	if raw := strings.TrimSpace(values.Get(ParamPage)); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Params{}, fmt.Errorf("%s: page: %w", op, ErrInvalidParams)
		}

		if n > 1 {
			p.Page = n
		}
	}

	// Смещение (page-1)*limit обязано помещаться в int64.
	if p.Page-1 > math.MaxInt64/p.Limit {
		return Params{}, fmt.Errorf("%s: page out of range: %w", op, ErrInvalidParams)
	}

	p.Sort = parseSort(values.Get(ParamSort), opts.Sortable)
	if len(p.Sort) == 0 {
		p.Sort = append([]SortField(nil), opts.DefaultSort...)
	}

	return p, nil
}

// parseSort разбирает строку сортировки, оставляя только разрешённые поля.
func parseSort(raw string, allowed []string) []SortField {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	allow := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allow[f] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []SortField

	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimLeft(part, "-+")

		if _, ok := allow[name]; !ok {
			continue
		}

		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		out = append(out, SortField{Field: name, Desc: desc})
	}

	return out
}

// Resolve переводит логические поля фильтра в имена полей хранилища.
// Ключи обходятся в отсортированном порядке, чтобы запросы были детерминированы.
func Resolve(f Filter, fields map[string]string, fn func(column string, value any)) error {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		col, ok := fields[k]
		if !ok {
			return fmt.Errorf("filter %q: %w", k, ErrUnknownField)
		}

		fn(col, f[k])
	}

	return nil
}

// ResolveSort переводит логические поля сортировки в имена полей хранилища.
func ResolveSort(s []SortField, fields map[string]string) ([]SortField, error) {
	out := make([]SortField, 0, len(s))
	for _, sf := range s {
		col, ok := fields[sf.Field]
		if !ok {
			return nil, fmt.Errorf("sort %q: %w", sf.Field, ErrUnknownField)
		}

		out = append(out, SortField{Field: col, Desc: sf.Desc})
	}

	return out, nil
}
