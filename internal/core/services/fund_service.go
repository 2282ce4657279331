package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
)

// Fund errors
var (
	ErrFundNotFound  = domain.NewError(domain.KindNotFound, "fund not found")
	ErrFundCompleted = domain.NewError(domain.KindState, "fund has already reached its target")
)

// FundService manages collection drives
type FundService struct {
	repo  repositories.FundRepository
	audit *AuditService
	loc   *time.Location
	now   func() time.Time
}

// NewFundService creates a new fund service
func NewFundService(repo repositories.FundRepository, audit *AuditService, loc *time.Location) *FundService {
	return &FundService{repo: repo, audit: audit, loc: loc, now: time.Now}
}

// FundInput represents create fund input
type FundInput struct {
	Purpose      string          `json:"purpose"`
	Date         string          `json:"date"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

// ContributionInput represents a contribution to a fund
type ContributionInput struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// List returns every fund
func (s *FundService) List(ctx context.Context) ([]*models.Fund, error) {
	funds, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.Internal("list funds", err)
	}
	return funds, nil
}

// Get returns a fund with its contributions
func (s *FundService) Get(ctx context.Context, id uint) (*models.Fund, []*models.FundContribution, error) {
	fund, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storeErr(err, ErrFundNotFound, "get fund")
	}
	list, err := s.repo.ListContributions(ctx, id)
	if err != nil {
		return nil, nil, domain.Internal("list contributions", err)
	}
	return fund, list, nil
}

// Create opens a new fund
func (s *FundService) Create(ctx context.Context, actor domain.Actor, input *FundInput) (*models.Fund, error) {
	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		return nil, domain.Validation("purpose is required")
	}
	if !input.TargetAmount.IsPositive() {
		return nil, domain.Validation("target_amount must be greater than zero")
	}
	date := s.now().In(s.loc)
	if input.Date != "" {
		d, err := parseDate(input.Date, s.loc)
		if err != nil {
			return nil, err
		}
		date = d
	}

	fund := &models.Fund{
		Purpose:        purpose,
		Date:           date,
		TargetAmount:   input.TargetAmount.Round(2),
		TotalCollected: decimal.Zero,
		Status:         string(domain.FundActive),
		CreatedBy:      actor.UserID,
	}
	if err := s.repo.Create(ctx, fund); err != nil {
		return nil, domain.Internal("create fund", err)
	}

	s.audit.Record(ctx, actor, ActionCreateFund, EntityFund, idString(fund.ID),
		fmt.Sprintf("%s target %s", fund.Purpose, fund.TargetAmount.StringFixed(2)))
	return fund, nil
}

// Contribute adds a payment to an active fund
func (s *FundService) Contribute(ctx context.Context, actor domain.Actor, id uint, input *ContributionInput) (*models.Fund, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	fund, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrFundNotFound, "get fund")
	}
	if fund.Status == string(domain.FundCompleted) {
		return nil, ErrFundCompleted
	}

	amount := input.Amount.Round(2)
	updated, err := s.repo.Contribute(ctx, &models.FundContribution{
		FundID: id,
		UserID: actor.UserID,
		FlatID: actor.FlatID,
		Amount: amount,
		Note:   strings.TrimSpace(input.Note),
	})
	if err != nil {
		return nil, storeErr(err, ErrFundNotFound, "contribute to fund")
	}

	s.audit.Record(ctx, actor, ActionContributeFund, EntityFund, idString(id),
		fmt.Sprintf("%s contributed, collected %s of %s", amount.StringFixed(2),
			updated.TotalCollected.StringFixed(2), updated.TargetAmount.StringFixed(2)))
	return updated, nil
}
