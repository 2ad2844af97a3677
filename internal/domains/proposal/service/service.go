package service

import (
	"context"
	"crm/config"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/infras/s3"
	activityModel "crm/internal/domains/activity/model"
	activityRepo "crm/internal/domains/activity/repository"
	contactModel "crm/internal/domains/contact/model"
	contactRepo "crm/internal/domains/contact/repository"
	eventDetailModel "crm/internal/domains/eventdetail/model"
	eventDetailRepo "crm/internal/domains/eventdetail/repository"
	leadModel "crm/internal/domains/lead/model"
	leadRepo "crm/internal/domains/lead/repository"
	orgModel "crm/internal/domains/organization/model"
	orgRepo "crm/internal/domains/organization/repository"
	"crm/internal/domains/proposal/model"
	"crm/internal/domains/proposal/model/dto"
	"crm/internal/domains/proposal/pdf"
	"crm/internal/domains/proposal/repository"
	"crm/shared"
	"crm/shared/cache"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	gModel "crm/shared/model"
	"crm/shared/timezone"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Proposal interface {
	Generate(ctx context.Context, leadID string) (dto.ProposalResponse, error)
	Preview(ctx context.Context, leadID string) (dto.File, error)
	GetAll(ctx context.Context, leadID string) (dto.GetProposalsResponse, error)
	Get(ctx context.Context, leadID, id string) (dto.ProposalResponse, error)
	Delete(ctx context.Context, leadID, id string) error
}

type Dependencies struct {
	Leads         leadRepo.Lead
	Contacts      contactRepo.Contact
	Organizations orgRepo.Organization
	EventDetails  eventDetailRepo.EventDetail
	Activities    activityRepo.Activity
}

type serviceImpl struct {
	repo     repository.Proposal
	deps     Dependencies
	tx       postgres.Transactor
	storage  s3.S3
	renderer pdf.Renderer
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Proposal, deps Dependencies, tx postgres.Transactor, storage s3.S3, renderer pdf.Renderer, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Proposal {
	return &serviceImpl{
		repo:     repo,
		deps:     deps,
		tx:       tx,
		storage:  storage,
		renderer: renderer,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

// sources is everything a proposal is rendered from.
type sources struct {
	lead          leadModel.Lead
	contact       contactModel.Contact
	organization  orgModel.Organization
	details       []eventDetailModel.EventDetail
	latestVersion int
}

func (s *serviceImpl) Generate(ctx context.Context, leadID string) (res dto.ProposalResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".proposal.Generate")
	defer scope.End()
	defer scope.TraceIfError(&err)

	src, err := s.load(ctx, leadID)
	if err != nil {
		return res, err
	}

	actor := shared.Actor(ctx)
	issued := timezone.Now()
	version := src.latestVersion + 1
	number := model.Number(s.cfg.Proposal.NumberPrefix, issued, version)
	validUntil := timezone.Today().AddDate(0, 0, s.cfg.Proposal.ValidityDays)

	doc := s.document(src, number, issued, validUntil)

	content, err := s.renderer.Render(doc)
	if err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("failed to render proposal")

		return res, fmt.Errorf("failed to render proposal: %w", err)
	}

	id := uuid.NewString()

	url, err := s.storage.UploadFileBytes(ctx, s.cfg.External.S3.BucketName, path.Join(s.cfg.Proposal.StorageDir, leadID), model.ObjectName(number, id), model.ContentType, content)
	if err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("failed to upload proposal")

		return res, fmt.Errorf("failed to upload proposal: %w", err)
	}

	quote := doc.Quote
	proposal := model.Proposal{
		ID:                   id,
		LeadID:               leadID,
		Version:              version,
		Number:               number,
		Currency:             src.lead.Currency,
		Subtotal:             quote.Subtotal,
		ServiceChargePercent: quote.ServiceChargePercent,
		ServiceCharge:        quote.ServiceCharge,
		TaxPercent:           quote.TaxPercent,
		Tax:                  quote.Tax,
		Total:                quote.Total,
		FileURL:              url,
		ValidUntil:           validUntil,
		Metadata:             gModel.NewMetadata(actor, issued),
	}

	activity := activityModel.Activity{
		ID:          uuid.NewString(),
		LeadID:      leadID,
		Type:        activityModel.TypeProposal,
		Subject:     fmt.Sprintf("Proposal %s sent, total %s %.2f", number, proposal.Currency, proposal.Total),
		ActivityAt:  issued,
		AssignedTo:  actor,
		Completed:   true,
		CompletedAt: &issued,
		Metadata:    gModel.NewMetadata(actor, issued),
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, proposal); err != nil {
			return fmt.Errorf("failed to create proposal: %w", err)
		}

		if err := s.deps.Activities.InsertTx(ctx, tx, activity); err != nil {
			return fmt.Errorf("failed to record proposal activity: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("failed to store proposal")

		go s.deleteFile(context.WithoutCancel(ctx), url)

		if postgres.IsUniqueViolation(err) {
			return res, failure.Conflict("another proposal for this lead was generated at the same time, please retry")
		}

		return res, err
	}

	go s.invalidate(context.WithoutCancel(ctx), leadID)

	res.FromModel(proposal)

	return res, nil
}

// Preview renders the next proposal of a lead without storing it.
func (s *serviceImpl) Preview(ctx context.Context, leadID string) (res dto.File, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".proposal.Preview")
	defer scope.End()
	defer scope.TraceIfError(&err)

	src, err := s.load(ctx, leadID)
	if err != nil {
		return res, err
	}

	issued := timezone.Now()
	number := model.Number(s.cfg.Proposal.NumberPrefix, issued, src.latestVersion+1)

	doc := s.document(src, number, issued, timezone.Today().AddDate(0, 0, s.cfg.Proposal.ValidityDays))
	doc.Draft = true

	content, err := s.renderer.Render(doc)
	if err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("failed to render proposal preview")

		return res, fmt.Errorf("failed to render proposal preview: %w", err)
	}

	return dto.File{Name: model.FileName(number), Content: content}, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, leadID string) (res dto.GetProposalsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".proposal.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(constant.CacheKeyProposals, leadID), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GetProposalsResponse, err error) {
		exist, err := s.deps.Leads.Exist(ctx, shared.FilterByID(leadID, leadModel.FieldID, leadModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to check if lead exists")

			return res, fmt.Errorf("failed to check if lead exists: %w", err)
		}

		if !exist {
			return res, failure.NotFound("lead")
		}

		models, err := s.repo.GetAll(ctx, repository.Newest(0), repository.ByLead(leadID))
		if err != nil {
			log.Error().Err(err).Msg("failed to get proposals")

			return res, fmt.Errorf("failed to get proposals: %w", err)
		}

		res.FromModels(models)

		return res, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, leadID, id string) (res dto.ProposalResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".proposal.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	proposal, err := s.proposal(ctx, leadID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(proposal)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, leadID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".proposal.Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	proposal, err := s.proposal(ctx, leadID, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, repository.ByLeadAndID(leadID, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete proposal")

		return fmt.Errorf("failed to delete proposal: %w", err)
	}

	go s.deleteFile(context.WithoutCancel(ctx), proposal.FileURL)
	go s.invalidate(context.WithoutCancel(ctx), leadID)

	return nil
}

// load reads the lead, its lines and the latest version concurrently, then the
// contact and organization the lead points at.
func (s *serviceImpl) load(ctx context.Context, leadID string) (src sources, err error) {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		lead, err := s.deps.Leads.Get(gctx, shared.FilterByID(leadID, leadModel.FieldID, leadModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to get lead: %w", err)
		}

		src.lead = lead

		return nil
	})

	group.Go(func() error {
		details, err := s.deps.EventDetails.GetAll(gctx, gDto.QueryParams{}, eventDetailRepo.ByLead(leadID))
		if err != nil {
			return fmt.Errorf("failed to get event details: %w", err)
		}

		src.details = details

		return nil
	})

	group.Go(func() error {
		latest, err := s.repo.GetAll(gctx, repository.Newest(1), repository.ByLead(leadID))
		if err != nil {
			return fmt.Errorf("failed to get latest proposal: %w", err)
		}

		if len(latest) > 0 {
			src.latestVersion = latest[0].Version
		}

		return nil
	})

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("failed to load proposal data")

		return src, err
	}

	if src.lead.ID == "" {
		return src, failure.NotFound("lead")
	}

	if src.lead.Status == leadModel.StatusLost {
		return src, failure.BadRequestFromString("a proposal cannot be generated for a lost lead")
	}

	if len(src.details) == 0 {
		return src, failure.BadRequestFromString("add at least one event detail before generating a proposal")
	}

	group, gctx = errgroup.WithContext(ctx)

	group.Go(func() error {
		contact, err := s.deps.Contacts.Get(gctx, shared.FilterByID(src.lead.ContactID, contactModel.FieldID, contactModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to get contact: %w", err)
		}

		src.contact = contact

		return nil
	})

	if src.lead.OrganizationID != nil {
		group.Go(func() error {
			org, err := s.deps.Organizations.Get(gctx, shared.FilterByID(*src.lead.OrganizationID, orgModel.FieldID, orgModel.TableName))
			if err != nil {
				return fmt.Errorf("failed to get organization: %w", err)
			}

			src.organization = org

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("failed to load proposal client")

		return src, err
	}

	return src, nil
}

func (s *serviceImpl) document(src sources, number string, issued, validUntil time.Time) pdf.Document {
	client := pdf.Client{
		Name:         src.contact.FullName(),
		JobTitle:     deref(src.contact.JobTitle),
		Organization: src.organization.Name,
		Email:        deref(src.contact.Email),
		Phone:        deref(src.contact.Phone),
	}

	client.Address = strings.Join(nonEmpty(deref(src.organization.Address), deref(src.organization.City), deref(src.organization.Country)), ", ")

	return pdf.Document{
		Number:     number,
		IssuedAt:   issued,
		ValidUntil: validUntil,
		Client:     client,
		Event: pdf.Event{
			Name:      src.lead.EventName,
			Type:      src.lead.EventType,
			Arrival:   src.lead.ArrivalDate,
			Departure: src.lead.DepartureDate,
			Nights:    src.lead.Nights(),
			Attendees: src.lead.Attendees,
			Currency:  src.lead.Currency,
		},
		Quote: model.NewQuote(src.details, s.cfg.Proposal.ServiceCharge, s.cfg.Proposal.TaxPercent),
	}
}

func (s *serviceImpl) proposal(ctx context.Context, leadID, id string) (model.Proposal, error) {
	proposal, err := s.repo.Get(ctx, repository.ByLeadAndID(leadID, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get proposal")

		return proposal, fmt.Errorf("failed to get proposal: %w", err)
	}

	if proposal.ID == "" {
		return proposal, failure.NotFound("proposal")
	}

	return proposal, nil
}

func (s *serviceImpl) deleteFile(ctx context.Context, url string) {
	objectName := s.storage.GetObjectNameFromURL(s.cfg.External.S3.BucketName, url)
	if objectName == "" {
		return
	}

	if err := s.storage.DeleteFile(ctx, s.cfg.External.S3.BucketName, "", objectName); err != nil {
		log.Error().Err(err).Str("object", objectName).Msg("failed to delete proposal file")
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, leadID string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(constant.CacheKeyProposals, leadID)); err != nil {
		log.Error().Err(err).Msg("failed to delete proposals from cache")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func nonEmpty(values ...string) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			res = append(res, v)
		}
	}

	return res
}
