package notify

import (
	"context"
	"errors"
	"testing"

	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSender) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-123")}, nil
}

func strPtr(s string) *string { return &s }

func testDeal() models.Deal {
	broker := "broker@ops.example"
	return models.Deal{
		ID:                "d-1",
		LegalBusinessName: "Acme Logistics LLC",
		EIN:               "12-3456789",
		City:              "Austin",
		State:             "TX",
		Zip:               "78701",
		DesiredLoanAmount: decimal.NewFromInt(150000),
		LoanType:          models.LoanTypeMCA,
		BrokerEmail:       &broker,
	}
}

func TestSendSubmission(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, "deals@lending.example", logger.NewNoOpLogger())

	lender := models.LenderRow{
		LenderName:             "Apex Capital",
		ContactEmail:           strPtr("intake@apex.example"),
		SubmissionRequirements: strPtr("3 months bank statements, signed application"),
	}

	result, err := svc.SendSubmission(context.Background(), testDeal(), lender)
	require.NoError(t, err)

	assert.Equal(t, "Apex Capital", result.LenderName)
	assert.Equal(t, "intake@apex.example", result.To)
	assert.Equal(t, "msg-123", result.MessageID)

	require.Len(t, sender.inputs, 1)
	input := sender.inputs[0]
	assert.Equal(t, "deals@lending.example", *input.Source)
	assert.Equal(t, []string{"intake@apex.example"}, input.Destination.ToAddresses)
	assert.Equal(t, []string{"broker@ops.example"}, input.ReplyToAddresses)
	assert.Contains(t, *input.Message.Subject.Data, "Acme Logistics LLC")

	body := *input.Message.Body.Text.Data
	assert.Contains(t, body, "Requested amount: $150000.00")
	assert.Contains(t, body, "3 months bank statements")
}

func TestSendSubmissionMissingContactEmail(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, "deals@lending.example", logger.NewNoOpLogger())

	_, err := svc.SendSubmission(context.Background(), testDeal(), models.LenderRow{
		LenderName: "No Contact Capital",
	})
	require.Error(t, err)
	assert.Empty(t, sender.inputs)
}

func TestSendSubmissionSESFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("throttled")}
	svc := NewService(sender, "deals@lending.example", logger.NewNoOpLogger())

	_, err := svc.SendSubmission(context.Background(), testDeal(), models.LenderRow{
		LenderName:   "Apex Capital",
		ContactEmail: strPtr("intake@apex.example"),
	})
	assert.Error(t, err)
}
