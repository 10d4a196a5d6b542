package models

import (
	"time"

	"github.com/google/uuid"
)

// DelayStatus is the moderation state of a delay report
type DelayStatus string

const (
	DelayPending     DelayStatus = "pending"
	DelayVerified    DelayStatus = "verified"
	DelayResolved    DelayStatus = "resolved"
	DelayFalseReport DelayStatus = "false_report"
)

// Valid reports whether s is a known status
func (s DelayStatus) Valid() bool {
	switch s {
	case DelayPending, DelayVerified, DelayResolved, DelayFalseReport:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s
func (s DelayStatus) Terminal() bool {
	return s == DelayResolved || s == DelayFalseReport
}

// Severity is derived from the reported delay
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityFor buckets a delay in minutes: <=10 low, <=30 medium, <=60 high, else critical
func SeverityFor(delayMinutes int) Severity {
	switch {
	case delayMinutes <= 10:
		return SeverityLow
	case delayMinutes <= 30:
		return SeverityMedium
	case delayMinutes <= 60:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// DelayReason categorises a delay
type DelayReason string

const (
	ReasonTraffic       DelayReason = "traffic"
	ReasonMechanical    DelayReason = "mechanical"
	ReasonWeather       DelayReason = "weather"
	ReasonAccident      DelayReason = "accident"
	ReasonConstruction  DelayReason = "construction"
	ReasonStaffShortage DelayReason = "staff_shortage"
	ReasonOther         DelayReason = "other"
)

// DelayAction is an admin moderation action
type DelayAction string

const (
	ActionVerify  DelayAction = "verify"
	ActionResolve DelayAction = "resolve"
	ActionReject  DelayAction = "reject"
)

// Transition returns the statuses the action may start from and the status it leads to.
//
//	pending  -> verified      (verify)
//	verified -> resolved      (resolve)
//	pending  -> false_report  (reject)
//	verified -> false_report  (reject)
func (a DelayAction) Transition() (from []DelayStatus, to DelayStatus, ok bool) {
	switch a {
	case ActionVerify:
		return []DelayStatus{DelayPending}, DelayVerified, true
	case ActionResolve:
		return []DelayStatus{DelayVerified}, DelayResolved, true
	case ActionReject:
		return []DelayStatus{DelayPending, DelayVerified}, DelayFalseReport, true
	}
	return nil, "", false
}

// CanTransition reports whether a report in status from may move to status to
func CanTransition(from, to DelayStatus) bool {
	for _, a := range []DelayAction{ActionVerify, ActionResolve, ActionReject} {
		allowed, target, _ := a.Transition()
		if target != to {
			continue
		}
		for _, s := range allowed {
			if s == from {
				return true
			}
		}
	}
	return false
}

// DelayReport is a crowd-sourced claim that a route is running late
type DelayReport struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	RouteID           uuid.UUID    `json:"routeId" db:"route_id"`
	ReportedBy        *uuid.UUID   `json:"reportedBy,omitempty" db:"reported_by"`
	DelayMinutes      int          `json:"delayMinutes" db:"delay_minutes"`
	Reason            DelayReason  `json:"reason" db:"reason"`
	Description       string       `json:"description,omitempty" db:"description"`
	Location          *Coordinates `json:"location,omitempty" db:"-"`
	StopName          string       `json:"stopName,omitempty" db:"stop_name"`
	AffectedDirection string       `json:"affectedDirection,omitempty" db:"affected_direction"`
	Upvotes           UUIDSet      `json:"upvotes" db:"upvotes"`
	Downvotes         UUIDSet      `json:"downvotes" db:"downvotes"`
	Status            DelayStatus  `json:"status" db:"status"`
	Severity          Severity     `json:"severity" db:"severity"`
	VerifiedBy        *uuid.UUID   `json:"verifiedBy,omitempty" db:"verified_by"`
	VerifiedAt        *time.Time   `json:"verifiedAt,omitempty" db:"verified_at"`
	ResolvedAt        *time.Time   `json:"resolvedAt,omitempty" db:"resolved_at"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" db:"updated_at"`
}

// ConfidenceScore is upvotes minus downvotes
func (r *DelayReport) ConfidenceScore() int {
	return len(r.Upvotes) - len(r.Downvotes)
}

// UserSummary is the reporter information joined into delay listings
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
}

// DelayReportView is a report with its derived counters and joined summaries
type DelayReportView struct {
	DelayReport
	UpvoteCount     int           `json:"upvoteCount"`
	DownvoteCount   int           `json:"downvoteCount"`
	ConfidenceScore int           `json:"confidenceScore"`
	Route           *RouteSummary `json:"route,omitempty"`
	Reporter        *UserSummary  `json:"reporter,omitempty"`
}

// NewDelayReportView derives the counters for r
func NewDelayReportView(r DelayReport, route *RouteSummary, reporter *UserSummary) DelayReportView {
	return DelayReportView{
		DelayReport:     r,
		UpvoteCount:     len(r.Upvotes),
		DownvoteCount:   len(r.Downvotes),
		ConfidenceScore: r.ConfidenceScore(),
		Route:           route,
		Reporter:        reporter,
	}
}

// VoteDirection selects the vote set a toggle applies to
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// VoteResult is the state of a report's votes after a toggle
type VoteResult struct {
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
	Voted     bool `json:"voted"` // whether the user's vote is present after the toggle
}

// ConfidenceScore is upvotes minus downvotes
func (v VoteResult) ConfidenceScore() int {
	return v.Upvotes - v.Downvotes
}

// StatusChange describes a conditional status update
type StatusChange struct {
	From       []DelayStatus
	To         DelayStatus
	VerifiedBy *uuid.UUID
	At         time.Time
}

// DelayFilter narrows delay report listings
type DelayFilter struct {
	RouteID *uuid.UUID
	Status  DelayStatus
	Limit   int
}

// ReportDelayRequest is the body of POST /api/delays/report
type ReportDelayRequest struct {
	RouteID           string       `json:"routeId" validate:"required,uuid"`
	DelayMinutes      int          `json:"delayMinutes" validate:"required,gte=1,lte=180"`
	Reason            string       `json:"reason" validate:"omitempty,oneof=traffic mechanical weather accident construction staff_shortage other"`
	Description       string       `json:"description" validate:"max=500"`
	Location          *Coordinates `json:"location"`
	StopName          string       `json:"stopName" validate:"max=200"`
	AffectedDirection string       `json:"affectedDirection" validate:"omitempty,oneof=both inbound outbound"`
	// Severity is accepted for compatibility and ignored; it is derived from DelayMinutes.
	Severity string `json:"severity"`
}

// VoteRequest is the body of PUT /api/delays/:id/upvote and /downvote
type VoteRequest struct {
	UserID string `json:"userId"`
}

// BulkActionRequest is the body of POST /api/admin/delays/bulk-action
type BulkActionRequest struct {
	ReportIDs []string `json:"reportIds" validate:"required,min=1,max=100,dive,required"`
	Action    string   `json:"action" validate:"required,oneof=verify resolve reject"`
}

// BulkActionResult is the outcome for one report of a bulk action
type BulkActionResult struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Status  DelayStatus `json:"status,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BulkActionResponse summarises a bulk action
type BulkActionResponse struct {
	Action    DelayAction        `json:"action"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Results   []BulkActionResult `json:"results"`
}
