package billing

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tier is a commercial plan level.
type Tier string

const (
	TierPersonal     Tier = "personal"
	TierProfessional Tier = "professional"
)

// Plan maps a processor price id to a quota.
type Plan struct {
	ID           string `json:"id" yaml:"id"`
	Tier         Tier   `json:"tier" yaml:"tier"`
	Name         string `json:"name" yaml:"name"`
	Interval     string `json:"interval" yaml:"interval"`
	MonthlyQuota int    `json:"monthlyQuota" yaml:"monthly_quota"`
}

// PlanSource loads the plan table keyed by price id.
type PlanSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// DefaultPlans is the built-in plan table.
func DefaultPlans() []Plan {
	return []Plan{
		{ID: "price_personal_monthly", Tier: TierPersonal, Name: "Personal", Interval: "month", MonthlyQuota: 10},
		{ID: "price_personal_yearly", Tier: TierPersonal, Name: "Personal", Interval: "year", MonthlyQuota: 10},
		{ID: "price_professional_monthly", Tier: TierProfessional, Name: "Professional", Interval: "month", MonthlyQuota: 100},
		{ID: "price_professional_yearly", Tier: TierProfessional, Name: "Professional", Interval: "year", MonthlyQuota: 100},
	}
}

type inMemSource struct {
	plans map[string]Plan
}

// NewInMemSource serves a fixed list of plans. Later duplicates win.
func NewInMemSource(plans ...Plan) PlanSource {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[p.ID] = p
	}
	return inMemSource{plans: m}
}

func (s inMemSource) Load(context.Context) (map[string]Plan, error) {
	out := make(map[string]Plan, len(s.plans))
	for id, p := range s.plans {
		out[id] = p
	}
	return out, nil
}

type fileSource struct {
	path string
}

// NewFileSource reads plans from a YAML file of the form:
//
//	plans:
//	  - id: price_123
//	    tier: personal
//	    name: Personal
//	    interval: month
//	    monthly_quota: 10
func NewFileSource(path string) PlanSource {
	return fileSource{path: path}
}

func (s fileSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return NewInMemSource(doc.Plans...).Load(ctx)
}

func validatePlans(plans map[string]Plan) error {
	var errs []error
	for id, p := range plans {
		switch {
		case id == "" || p.ID != id:
			errs = append(errs, fmt.Errorf("plan %q: empty or mismatched id", id))
		case p.Tier != TierPersonal && p.Tier != TierProfessional:
			errs = append(errs, fmt.Errorf("plan %q: unknown tier %q", id, p.Tier))
		case p.MonthlyQuota < 0:
			errs = append(errs, fmt.Errorf("plan %q: negative quota", id))
		}
	}
	if len(errs) > 0 {
		return errors.Join(ErrInvalidPlanConfiguration, errors.Join(errs...))
	}
	return nil
}
