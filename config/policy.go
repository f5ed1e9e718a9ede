package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/akinalp/workdesk/pkg/tz"
)

//go:embed default_policy.yaml
var defaultPolicy []byte

// Policy holds the office rules the attendance and request services enforce.
type Policy struct {
	Workday     WorkdayPolicy    `yaml:"workday" json:"workday"`
	Weekends    []string         `yaml:"weekends" json:"weekends"`
	LeaveTypes  []LeaveType      `yaml:"leave_types" json:"leave_types"`
	Permission  PermissionPolicy `yaml:"permission" json:"permission"`
	Overtime    OvertimePolicy   `yaml:"overtime" json:"overtime"`
	weekendDays []time.Weekday
	startMin    int
	endMin      int
}

type WorkdayPolicy struct {
	Start                        string `yaml:"start" json:"start"`
	End                          string `yaml:"end" json:"end"`
	LateGraceMinutes             int    `yaml:"late_grace_minutes" json:"late_grace_minutes"`
	HalfDayMinutes               int    `yaml:"half_day_minutes" json:"half_day_minutes"`
	CheckoutReminderAfterMinutes int    `yaml:"checkout_reminder_after_minutes" json:"checkout_reminder_after_minutes"`
}

// LeaveType is one entry of the leave catalogue. AnnualQuota 0 means unlimited.
type LeaveType struct {
	Code        string  `yaml:"code" json:"code"`
	Name        string  `yaml:"name" json:"name"`
	AnnualQuota float64 `yaml:"annual_quota" json:"annual_quota"`
}

type PermissionPolicy struct {
	MaxMinutes  int `yaml:"max_minutes" json:"max_minutes"`
	MaxPerMonth int `yaml:"max_per_month" json:"max_per_month"`
}

type OvertimePolicy struct {
	MaxHoursPerDay float64 `yaml:"max_hours_per_day" json:"max_hours_per_day"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// LoadPolicy reads the YAML policy at path, or the built-in default when
// path is empty.
func LoadPolicy(path string) (*Policy, error) {
	data := defaultPolicy
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy %s: %w", path, err)
		}
		data = b
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a YAML policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &p, nil
}

func (p *Policy) validate() error {
	var err error
	if p.startMin, err = tz.ParseClock(p.Workday.Start); err != nil {
		return fmt.Errorf("workday.start: %w", err)
	}
	if p.endMin, err = tz.ParseClock(p.Workday.End); err != nil {
		return fmt.Errorf("workday.end: %w", err)
	}
	if p.endMin <= p.startMin {
		return fmt.Errorf("workday.end must be after workday.start")
	}
	if p.Workday.LateGraceMinutes < 0 || p.Workday.HalfDayMinutes < 0 || p.Workday.CheckoutReminderAfterMinutes < 0 {
		return fmt.Errorf("workday minutes must not be negative")
	}

	p.weekendDays = p.weekendDays[:0]
	for _, name := range p.Weekends {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown weekday %q", name)
		}
		p.weekendDays = append(p.weekendDays, d)
	}

	if len(p.LeaveTypes) == 0 {
		return fmt.Errorf("at least one leave type is required")
	}
	seen := make(map[string]bool, len(p.LeaveTypes))
	for _, lt := range p.LeaveTypes {
		if lt.Code == "" {
			return fmt.Errorf("leave type code is required")
		}
		if seen[lt.Code] {
			return fmt.Errorf("duplicate leave type %q", lt.Code)
		}
		if lt.AnnualQuota < 0 {
			return fmt.Errorf("leave type %q has a negative quota", lt.Code)
		}
		seen[lt.Code] = true
	}

	if p.Permission.MaxMinutes <= 0 || p.Permission.MaxPerMonth <= 0 {
		return fmt.Errorf("permission limits must be positive")
	}
	if p.Overtime.MaxHoursPerDay <= 0 {
		return fmt.Errorf("overtime.max_hours_per_day must be positive")
	}
	return nil
}

// WeekendDays returns the parsed weekend weekdays.
func (p *Policy) WeekendDays() []time.Weekday {
	return p.weekendDays
}

// StartMinutes is the workday start in minutes past midnight.
func (p *Policy) StartMinutes() int { return p.startMin }

// EndMinutes is the workday end in minutes past midnight.
func (p *Policy) EndMinutes() int { return p.endMin }

// ScheduledMinutes is the length of a full workday.
func (p *Policy) ScheduledMinutes() int { return p.endMin - p.startMin }

// LeaveType looks up a leave type by code.
func (p *Policy) LeaveType(code string) (LeaveType, bool) {
	for _, lt := range p.LeaveTypes {
		if lt.Code == code {
			return lt, true
		}
	}
	return LeaveType{}, false
}
