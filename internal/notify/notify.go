// Package notify sends deal submission emails to lenders over SES.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	stderrors "lending-ops/internal/common/errors"
	"lending-ops/internal/common/logger"
	"lending-ops/internal/common/validation"
	"lending-ops/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailSender is the slice of the SES client the service needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type Service struct {
	sender    EmailSender
	fromEmail string
	log       logger.Logger
}

func NewService(sender EmailSender, fromEmail string, log logger.Logger) *Service {
	return &Service{
		sender:    sender,
		fromEmail: fromEmail,
		log:       log,
	}
}

// SubmissionResult reports one sent submission email.
type SubmissionResult struct {
	LenderName string    `json:"lender_name"`
	To         string    `json:"to"`
	MessageID  string    `json:"message_id"`
	SentAt     time.Time `json:"sent_at"`
}

// SendSubmission emails a deal package summary to one lender's intake
// address. Lenders without a contact email are skipped by the caller.
func (s *Service) SendSubmission(ctx context.Context, deal models.Deal, lender models.LenderRow) (*SubmissionResult, error) {
	if lender.ContactEmail == nil || !validation.ValidateEmail(*lender.ContactEmail) {
		return nil, stderrors.NewValidationError(fmt.Sprintf("lender %s has no valid contact email", lender.LenderName))
	}
	to := *lender.ContactEmail

	subject := fmt.Sprintf("Submission: %s — %s", deal.LegalBusinessName, deal.LoanType)
	body := buildSubmissionBody(deal, lender)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	}
	if deal.BrokerEmail != nil && validation.ValidateEmail(*deal.BrokerEmail) {
		input.ReplyToAddresses = []string{*deal.BrokerEmail}
	}

	out, err := s.sender.SendEmail(ctx, input)
	if err != nil {
		s.log.WithError(err).Error("submission email failed", map[string]interface{}{
			"dealId":     deal.ID,
			"lenderName": lender.LenderName,
		})
		return nil, stderrors.NewNotificationError(err)
	}

	result := &SubmissionResult{
		LenderName: lender.LenderName,
		To:         to,
		SentAt:     time.Now().UTC(),
	}
	if out != nil && out.MessageId != nil {
		result.MessageID = *out.MessageId
	}

	s.log.Info("submission email sent", map[string]interface{}{
		"dealId":     deal.ID,
		"lenderName": lender.LenderName,
		"messageId":  result.MessageID,
	})
	return result, nil
}

func buildSubmissionBody(deal models.Deal, lender models.LenderRow) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "New %s submission for your review.\n\n", deal.LoanType)
	fmt.Fprintf(&sb, "Business: %s\n", deal.LegalBusinessName)
	if deal.DBAName != nil {
		fmt.Fprintf(&sb, "DBA: %s\n", *deal.DBAName)
	}
	fmt.Fprintf(&sb, "EIN: %s\n", deal.EIN)
	fmt.Fprintf(&sb, "Location: %s, %s %s\n", deal.City, deal.State, deal.Zip)
	fmt.Fprintf(&sb, "Requested amount: $%s\n", deal.DesiredLoanAmount.StringFixed(2))
	if deal.AverageMonthlySales != nil {
		fmt.Fprintf(&sb, "Average monthly sales: $%s\n", deal.AverageMonthlySales.StringFixed(2))
	}
	if deal.TimeInBusinessMonths != nil {
		fmt.Fprintf(&sb, "Time in business: %d months\n", *deal.TimeInBusinessMonths)
	}
	if deal.CreditScore != nil {
		fmt.Fprintf(&sb, "Credit score: %d\n", *deal.CreditScore)
	}
	if deal.ReasonForLoan != nil {
		fmt.Fprintf(&sb, "Use of funds: %s\n", *deal.ReasonForLoan)
	}

	if lender.SubmissionRequirements != nil {
		fmt.Fprintf(&sb, "\nYour published submission requirements: %s\n", *lender.SubmissionRequirements)
	}
	if deal.BrokerEmail != nil {
		fmt.Fprintf(&sb, "\nReply to the broker at %s.\n", *deal.BrokerEmail)
	}

	return sb.String()
}
