package models

import (
	"fmt"
	"strings"
)

// JobStatus is open-ended on purpose: any value may follow any other. The
// usual path is new -> applied -> interviewing -> offer, with rejected or
// not_interested as exits along the way.
type JobStatus string

const (
	StatusNew           JobStatus = "new"
	StatusNotInterested JobStatus = "not_interested"
	StatusApplyLater    JobStatus = "apply_later"
	StatusApplied       JobStatus = "applied"
	StatusInterviewing  JobStatus = "interviewing"
	StatusOffer         JobStatus = "offer"
	StatusRejected      JobStatus = "rejected"
)

// JobStatuses lists every status in display order.
var JobStatuses = []JobStatus{
	StatusNew,
	StatusNotInterested,
	StatusApplyLater,
	StatusApplied,
	StatusInterviewing,
	StatusOffer,
	StatusRejected,
}

func ParseJobStatus(s string) (JobStatus, error) {
	v := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range JobStatuses {
		if v == st {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

type ApplyMethod string

const (
	ApplyEasyApply ApplyMethod = "easy_apply"
	ApplyExternal  ApplyMethod = "external"
	ApplyEmail     ApplyMethod = "email"
	ApplyReferral  ApplyMethod = "referral"
	ApplyOther     ApplyMethod = "other"
)

func ParseApplyMethod(s string) (ApplyMethod, error) {
	switch v := ApplyMethod(strings.ToLower(strings.TrimSpace(s))); v {
	case ApplyEasyApply, ApplyExternal, ApplyEmail, ApplyReferral, ApplyOther:
		return v, nil
	}
	return "", fmt.Errorf("unknown apply method %q", s)
}

type MessageType string

const (
	MessageConnection MessageType = "connection"
	MessageDirect     MessageType = "message"
	MessageInMail     MessageType = "inmail"
	MessageFollowUp   MessageType = "follow_up"
)

func ParseMessageType(s string) (MessageType, error) {
	if strings.TrimSpace(s) == "" {
		return MessageDirect, nil
	}
	switch v := MessageType(strings.ToLower(strings.TrimSpace(s))); v {
	case MessageConnection, MessageDirect, MessageInMail, MessageFollowUp:
		return v, nil
	}
	return "", fmt.Errorf("unknown message type %q", s)
}

// ConnectionStatus only moves forward: pending, sent, then one of
// accepted/no_response, then replied.
type ConnectionStatus string

const (
	ConnPending    ConnectionStatus = "pending"
	ConnSent       ConnectionStatus = "sent"
	ConnAccepted   ConnectionStatus = "accepted"
	ConnNoResponse ConnectionStatus = "no_response"
	ConnReplied    ConnectionStatus = "replied"
)

var connectionStage = map[ConnectionStatus]int{
	ConnPending:    0,
	ConnSent:       1,
	ConnAccepted:   2,
	ConnNoResponse: 2,
	ConnReplied:    3,
}

func ParseConnectionStatus(s string) (ConnectionStatus, error) {
	v := ConnectionStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := connectionStage[v]; !ok {
		return "", fmt.Errorf("unknown connection status %q", s)
	}
	return v, nil
}

// CanAdvance reports whether moving from -> to keeps the status monotonic.
// Staying put is allowed. Within a stage (accepted vs no_response) the
// later observation wins.
func (from ConnectionStatus) CanAdvance(to ConnectionStatus) bool {
	return connectionStage[to] >= connectionStage[from]
}

// Action is the kind of an ActivityLog entry.
type Action string

const (
	ActionUserRegistered   Action = "user_registered"
	ActionUserLogin        Action = "user_login"
	ActionProfileUpdated   Action = "profile_updated"
	ActionJobScanned       Action = "job_scanned"
	ActionJobSaved         Action = "job_saved"
	ActionStatusChanged    Action = "status_changed"
	ActionApplied          Action = "applied"
	ActionAIAnalysis       Action = "ai_analysis"
	ActionMessageGenerated Action = "message_generated"
	ActionMessageSent      Action = "message_sent"
)
