// internal/server/schemas.go
package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"lending-ops/internal/common/validation"
)

// One JSON Schema per writable resource. The schemas carry the structural
// rules (required fields, types, shapes); domain rules that need context
// (loan type exists, amount positive) stay in the handlers.

const lenderSchema = `{
	"type": "object",
	"required": ["lender_name"],
	"properties": {
		"lender_name":                {"type": "string", "minLength": 1},
		"status":                     {"type": "string"},
		"minimum_credit_requirement": {"type": ["integer", "null"]},
		"credit_requirement":         {"type": ["integer", "null"]},
		"minimum_monthly_revenue":    {"type": ["string", "null"]},
		"min_monthly_revenue_amount": {"type": ["string", "null"]},
		"minimum_time_in_business":   {"type": ["string", "null"]},
		"min_time_in_business":       {"type": ["string", "null"]},
		"states_restrictions":        {"type": ["string", "null"]},
		"ineligible_states":          {"type": ["string", "null"]},
		"rates_range":                {"type": ["string", "null"]},
		"terms_range":                {"type": ["string", "null"]},
		"submission_requirements":    {"type": ["string", "null"]},
		"contact_email":              {"type": ["string", "null"]}
	}
}`

const dealSchema = `{
	"type": "object",
	"required": ["legal_business_name", "ein", "address", "city", "state", "zip", "loan_type", "desired_loan_amount"],
	"properties": {
		"legal_business_name":     {"type": "string", "minLength": 1},
		"dba_name":                {"type": ["string", "null"]},
		"ein":                     {"type": "string", "minLength": 1},
		"business_type":           {"type": ["string", "null"]},
		"address":                 {"type": "string"},
		"city":                    {"type": "string"},
		"state":                   {"type": "string"},
		"zip":                     {"type": "string"},
		"phone":                   {"type": ["string", "null"]},
		"business_start_date":     {"type": ["string", "null"]},
		"time_in_business_months": {"type": ["integer", "null"]},
		"average_monthly_sales":   {"type": ["string", "number", "null"]},
		"desired_loan_amount":     {"type": ["string", "number"]},
		"reason_for_loan":         {"type": ["string", "null"]},
		"credit_score":            {"type": ["integer", "null"]},
		"loan_type":               {"type": "string"},
		"status":                  {"type": "string"},
		"broker_email":            {"type": ["string", "null"]}
	}
}`

const statementSchema = `{
	"type": "object",
	"required": ["bank_name", "statement_month"],
	"properties": {
		"bank_name":             {"type": "string", "minLength": 1},
		"statement_month":       {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}$"},
		"credits":               {"type": ["number", "null"]},
		"debits":                {"type": ["number", "null"]},
		"nsfs":                  {"type": "integer"},
		"overdrafts":            {"type": "integer"},
		"average_daily_balance": {"type": ["number", "null"]}
	}
}`

const taskSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name":     {"type": "string", "minLength": 1},
		"notes":    {"type": ["string", "null"]},
		"status":   {"type": "string"},
		"priority": {"type": "integer"},
		"assignee": {"type": ["string", "null"]},
		"due_date": {"type": ["string", "null"]}
	}
}`

const contentSchema = `{
	"type": "object",
	"required": ["content", "platform"],
	"properties": {
		"person_name":   {"type": "string"},
		"platform":      {"type": "string", "minLength": 1},
		"content":       {"type": "string", "minLength": 1},
		"tags":          {"type": "array", "items": {"type": "string"}},
		"status":        {"type": "string"},
		"scheduled_for": {"type": ["string", "null"]}
	}
}`

const maxPayloadBytes = 1 << 20

// decodeValidated reads the request body, checks it against the resource
// schema, then decodes it into v. It writes the error response itself and
// reports whether the handler should continue.
func (s *Server) decodeValidated(w http.ResponseWriter, r *http.Request, schema string, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		s.respondValidation(w, r, "unreadable payload: "+err.Error())
		return false
	}

	result, err := validation.ValidateJSON(schema, body)
	if err != nil {
		s.respondValidation(w, r, "invalid payload: "+err.Error())
		return false
	}
	if !result.Valid {
		s.respondValidation(w, r, strings.Join(result.GetErrorMessages(), "; "))
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.respondValidation(w, r, "invalid payload: "+err.Error())
		return false
	}
	return true
}
