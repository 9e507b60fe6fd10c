package models

import (
	"encoding/json"
	"strings"
)

// SigniFlow REST envelopes. Field names must match the remote contract
// exactly; several fields arrive either as a string or as a nested object,
// so the loose ones are decoded through json.RawMessage.

// TokenObject is the full token envelope returned by Login. The FullWorkflow
// endpoint expects this whole object in the request body, not a bearer header.
type TokenObject struct {
	TokenField       string `json:"TokenField"`
	TokenExpiryField string `json:"TokenExpiryField,omitempty"`
}

type LoginRequest struct {
	UserNameField string `json:"UserNameField"`
	PasswordField string `json:"PasswordField"`
}

// LoginResponse keeps ResultField and TokenField raw: ResultField may be the
// string "Success" or the number 1, TokenField may be a plain token string or
// a nested TokenObject.
type LoginResponse struct {
	ResultField json.RawMessage `json:"ResultField"`
	TokenField  json.RawMessage `json:"TokenField"`
}

// Token normalizes the loose TokenField into a TokenObject. Returns false
// when no non-empty token string can be extracted.
func (r *LoginResponse) Token() (TokenObject, bool) {
	if len(r.TokenField) == 0 {
		return TokenObject{}, false
	}

	var obj TokenObject
	if err := json.Unmarshal(r.TokenField, &obj); err == nil && obj.TokenField != "" {
		return obj, true
	}

	var s string
	if err := json.Unmarshal(r.TokenField, &s); err == nil && s != "" {
		return TokenObject{TokenField: s}, true
	}

	return TokenObject{}, false
}

// WorkflowUser is one signer entry. Placements stay empty: field positions
// come from auto-tag matching or from the workflow template.
type WorkflowUser struct {
	ActionField             int    `json:"ActionField"`
	SignatureTypeField      int    `json:"SignatureTypeField"`
	UserFullNameField       string `json:"UserFullNameField"`
	EmailAddressField       string `json:"EmailAddressField"`
	AllowProxyField         int    `json:"AllowProxyField"`
	AutoSignField           int    `json:"AutoSignField"`
	LatitudeField           int    `json:"LatitudeField"`
	LongitudeField          int    `json:"LongitudeField"`
	SignReasonField         string `json:"SignReasonField"`
	SignerPasswordField     string `json:"SignerPasswordField"`
	WorkflowUserFieldsField []any  `json:"WorkflowUserFieldsField"`
}

// PlaceholderInfo replaces a placeholder user baked into a workflow template.
type PlaceholderInfo struct {
	UserEmailField   string `json:"UserEmailField"`
	ReferenceIDField int    `json:"ReferenceIDField"`
	UniqueIDField    string `json:"UniqueIDField"`
}

// RequestMode discriminates how the document reaches SigniFlow.
type RequestMode int

const (
	// ModeTemplateReference points at a workflow/portfolio stored remotely.
	ModeTemplateReference RequestMode = iota
	// ModeDirectUpload embeds base64 document bytes in the request.
	ModeDirectUpload
)

// FullWorkflowRequest is the submission payload. Boolean-ish flags are
// integer 0/1 on the wire, never JSON booleans. DocField is always present
// (empty string in template-reference mode).
type FullWorkflowRequest struct {
	UseAutoTagsField         int               `json:"UseAutoTagsField"`
	SendWorkflowEmailsField  int               `json:"SendWorkflowEmailsField"`
	SendFirstEmailField      int               `json:"SendFirstEmailField"`
	DocNameField             string            `json:"DocNameField"`
	ExtensionField           int               `json:"ExtensionField"`
	AutoRemindField          int               `json:"AutoRemindField"`
	CustomMessageField       string            `json:"CustomMessageField"`
	DocField                 string            `json:"DocField"`
	PriorityField            int               `json:"PriorityField"`
	SLAField                 int               `json:"SLAField"`
	TokenField               TokenObject       `json:"TokenField"`
	PortfolioIDField         int               `json:"PortfolioIDField,omitempty"`
	TagValuesField           map[string]string `json:"TagValuesField,omitempty"`
	WorkflowUsersListField   []WorkflowUser    `json:"WorkflowUsersListField,omitempty"`
	PlaceholderInfoListField []PlaceholderInfo `json:"PlaceholderInfoListField,omitempty"`

	// Mode is service-internal, not part of the wire payload.
	Mode RequestMode `json:"-"`
}

// FullWorkflowResponse keeps the loose fields raw: ResultField is numeric 1
// on success or an error string; DocIDField/WorkflowIDField appear as numbers
// or strings depending on the deployment.
type FullWorkflowResponse struct {
	ResultField        json.RawMessage `json:"ResultField"`
	DocIDField         json.RawMessage `json:"DocIDField"`
	WorkflowIDField    json.RawMessage `json:"WorkflowIDField"`
	ResultFieldMessage string          `json:"ResultFieldMessage"`
	Message            string          `json:"Message"`
}

// SigningResult is the normalized successful submission outcome.
type SigningResult struct {
	DocID      string
	WorkflowID string
}

// WebhookNotification is the inbound callback body SigniFlow posts when a
// workflow changes state.
type WebhookNotification struct {
	DocIDField      json.RawMessage `json:"DocIDField"`
	WorkflowIDField json.RawMessage `json:"WorkflowIDField"`
	StatusField     string          `json:"StatusField"`
}

// IsSuccessCode preserves the legacy permissive equality: integer 1 and
// string "1" are success, and loginOK additionally accepts "Success".
// Everything else is generic failure.
func IsSuccessCode(raw json.RawMessage, loginOK bool) bool {
	if len(raw) == 0 {
		return false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n == 1
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	if s == "1" {
		return true
	}
	return loginOK && s == "Success"
}

// RawString flattens a loose string-or-number field to its string form.
func RawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return strings.TrimSpace(string(raw))
}
