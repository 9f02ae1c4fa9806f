package tracker

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	commonerrors "jobtrack-backend/internal/common/errors"
	"jobtrack-backend/internal/common/validation"
	"jobtrack-backend/internal/models"
	"jobtrack-backend/internal/tracker/applications"
	"jobtrack-backend/internal/tracker/network"
)

// DecodeApplicationInput validates a raw create payload against the
// application schema and converts it to a store input. The routing
// layer calls this before CreateApplication so the stores only ever
// see validated snapshots.
func DecodeApplicationInput(raw []byte) (applications.CreateInput, error) {
	var input applications.CreateInput

	result, err := validation.ValidateApplicationPayload(raw)
	if err != nil {
		return input, commonerrors.NewValidationError(err.Error())
	}
	if !result.Valid {
		return input, commonerrors.NewValidationError(joinErrors(result.Errors))
	}

	var payload struct {
		Company     string             `json:"company"`
		Role        string             `json:"role"`
		Status      string             `json:"status"`
		Source      string             `json:"source"`
		DateApplied string             `json:"dateApplied"`
		Notes       string             `json:"notes"`
		SalaryRange models.SalaryRange `json:"salaryRange"`
		Contacts    []string           `json:"contacts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return input, commonerrors.NewValidationError(err.Error())
	}

	dateApplied, err := time.Parse(time.RFC3339, payload.DateApplied)
	if err != nil {
		return input, commonerrors.NewInvalidDateError(fmt.Sprintf("dateApplied: %v", err))
	}

	return applications.CreateInput{
		Company:     payload.Company,
		Role:        payload.Role,
		Status:      payload.Status,
		Source:      payload.Source,
		DateApplied: dateApplied,
		Notes:       payload.Notes,
		SalaryRange: payload.SalaryRange,
		Contacts:    payload.Contacts,
	}, nil
}

// DecodeApplicationUpdate validates a partial application payload and
// converts the fields it carries to an update input; absent fields stay
// nil and the store leaves them untouched.
func DecodeApplicationUpdate(raw []byte) (applications.UpdateInput, error) {
	var input applications.UpdateInput

	result, err := validation.ValidateApplicationUpdatePayload(raw)
	if err != nil {
		return input, commonerrors.NewValidationError(err.Error())
	}
	if !result.Valid {
		return input, commonerrors.NewValidationError(joinErrors(result.Errors))
	}

	var payload struct {
		Company     *string             `json:"company"`
		Role        *string             `json:"role"`
		Status      *string             `json:"status"`
		Source      *string             `json:"source"`
		DateApplied *string             `json:"dateApplied"`
		Notes       *string             `json:"notes"`
		SalaryRange *models.SalaryRange `json:"salaryRange"`
		Contacts    *[]string           `json:"contacts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return input, commonerrors.NewValidationError(err.Error())
	}

	input = applications.UpdateInput{
		Company:     payload.Company,
		Role:        payload.Role,
		Status:      payload.Status,
		Source:      payload.Source,
		Notes:       payload.Notes,
		SalaryRange: payload.SalaryRange,
		Contacts:    payload.Contacts,
	}

	if payload.DateApplied != nil {
		t, err := time.Parse(time.RFC3339, *payload.DateApplied)
		if err != nil {
			return input, commonerrors.NewInvalidDateError(fmt.Sprintf("dateApplied: %v", err))
		}
		input.DateApplied = &t
	}

	return input, nil
}

// DecodeContactInput validates a raw contact payload against the
// contact schema and converts it to a store input.
func DecodeContactInput(raw []byte) (network.CreateInput, error) {
	var input network.CreateInput

	result, err := validation.ValidateContactPayload(raw)
	if err != nil {
		return input, commonerrors.NewValidationError(err.Error())
	}
	if !result.Valid {
		return input, commonerrors.NewValidationError(joinErrors(result.Errors))
	}

	var payload struct {
		Name              string `json:"name"`
		Email             string `json:"email"`
		Company           string `json:"company"`
		Role              string `json:"role"`
		MetAt             string `json:"metAt"`
		MetDate           string `json:"metDate"`
		FollowUpDate      string `json:"followUpDate"`
		LastContactedDate string `json:"lastContactedDate"`
		Notes             string `json:"notes"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return input, commonerrors.NewValidationError(err.Error())
	}

	input = network.CreateInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Company: payload.Company,
		Role:    payload.Role,
		MetAt:   payload.MetAt,
		Notes:   payload.Notes,
	}

	if payload.MetDate != "" {
		t, err := time.Parse(time.RFC3339, payload.MetDate)
		if err != nil {
			return input, commonerrors.NewInvalidDateError(fmt.Sprintf("metDate: %v", err))
		}
		input.MetDate = t
	}
	if payload.FollowUpDate != "" {
		t, err := time.Parse(time.RFC3339, payload.FollowUpDate)
		if err != nil {
			return input, commonerrors.NewInvalidDateError(fmt.Sprintf("followUpDate: %v", err))
		}
		input.FollowUpDate = &t
	}
	if payload.LastContactedDate != "" {
		t, err := time.Parse(time.RFC3339, payload.LastContactedDate)
		if err != nil {
			return input, commonerrors.NewInvalidDateError(fmt.Sprintf("lastContactedDate: %v", err))
		}
		input.LastContactedDate = &t
	}

	return input, nil
}

// DecodeContactUpdate validates a partial contact payload and converts
// the fields it carries to an update input.
func DecodeContactUpdate(raw []byte) (network.UpdateInput, error) {
	var input network.UpdateInput

	result, err := validation.ValidateContactUpdatePayload(raw)
	if err != nil {
		return input, commonerrors.NewValidationError(err.Error())
	}
	if !result.Valid {
		return input, commonerrors.NewValidationError(joinErrors(result.Errors))
	}

	var payload struct {
		Name              *string `json:"name"`
		Email             *string `json:"email"`
		Company           *string `json:"company"`
		Role              *string `json:"role"`
		MetAt             *string `json:"metAt"`
		MetDate           *string `json:"metDate"`
		FollowUpDate      *string `json:"followUpDate"`
		LastContactedDate *string `json:"lastContactedDate"`
		Notes             *string `json:"notes"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return input, commonerrors.NewValidationError(err.Error())
	}

	input = network.UpdateInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Company: payload.Company,
		Role:    payload.Role,
		MetAt:   payload.MetAt,
		Notes:   payload.Notes,
	}

	parseDate := func(field, value string) (*time.Time, error) {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, commonerrors.NewInvalidDateError(fmt.Sprintf("%s: %v", field, err))
		}
		return &t, nil
	}

	if payload.MetDate != nil {
		if input.MetDate, err = parseDate("metDate", *payload.MetDate); err != nil {
			return input, err
		}
	}
	if payload.FollowUpDate != nil {
		if input.FollowUpDate, err = parseDate("followUpDate", *payload.FollowUpDate); err != nil {
			return input, err
		}
	}
	if payload.LastContactedDate != nil {
		if input.LastContactedDate, err = parseDate("lastContactedDate", *payload.LastContactedDate); err != nil {
			return input, err
		}
	}

	return input, nil
}

func joinErrors(errs []validation.ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}
