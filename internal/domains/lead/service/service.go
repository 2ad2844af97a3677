package service

import (
	"context"
	"crm/config"
	"crm/infras/kafka"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/infras/s3"
	activityModel "crm/internal/domains/activity/model"
	activityRepo "crm/internal/domains/activity/repository"
	contactModel "crm/internal/domains/contact/model"
	contactRepo "crm/internal/domains/contact/repository"
	eventDetailRepo "crm/internal/domains/eventdetail/repository"
	"crm/internal/domains/lead/model"
	"crm/internal/domains/lead/model/dto"
	"crm/internal/domains/lead/repository"
	orgModel "crm/internal/domains/organization/model"
	orgRepo "crm/internal/domains/organization/repository"
	proposalModel "crm/internal/domains/proposal/model"
	proposalRepo "crm/internal/domains/proposal/repository"
	userModel "crm/internal/domains/user/model"
	userRepo "crm/internal/domains/user/repository"
	"crm/shared"
	"crm/shared/cache"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	gModel "crm/shared/model"
	"crm/shared/timezone"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetLead    = constant.CacheKeyLeads + "get"
	cacheGetAllLead = constant.CacheKeyLeads + "gets"
)

type Lead interface {
	Create(ctx context.Context, req dto.CreateLeadRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetLeadsResponse, error)
	Get(ctx context.Context, id string) (dto.LeadResponse, error)
	Update(ctx context.Context, req dto.UpdateLeadRequest, id string) error
	Delete(ctx context.Context, id string) error
	ChangeStatus(ctx context.Context, req dto.ChangeStatusRequest, id string) (dto.LeadResponse, error)
}

type Dependencies struct {
	Contacts      contactRepo.Contact
	Organizations orgRepo.Organization
	Users         userRepo.User
	Activities    activityRepo.Activity
	EventDetails  eventDetailRepo.EventDetail
	Proposals     proposalRepo.Proposal
}

type serviceImpl struct {
	repo    repository.Lead
	deps    Dependencies
	tx      postgres.Transactor
	kafka   kafka.Client
	storage s3.S3
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
}

func New(repo repository.Lead, deps Dependencies, tx postgres.Transactor, kafka kafka.Client, storage s3.S3, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Lead {
	return &serviceImpl{
		repo:    repo,
		deps:    deps,
		tx:      tx,
		kafka:   kafka,
		storage: storage,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateLeadRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lead.Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	arrival, departure, err := req.Dates()
	if err != nil {
		return id, err
	}

	contact, err := s.contact(ctx, req.ContactID)
	if err != nil {
		return id, err
	}

	// a lead inherits the organization of its contact unless one is given
	if req.OrganizationID == nil {
		req.OrganizationID = contact.OrganizationID
	} else if err = s.ensureOrganization(ctx, *req.OrganizationID); err != nil {
		return id, err
	}

	if req.OwnerID != nil {
		if err = s.ensureOwner(ctx, *req.OwnerID); err != nil {
			return id, err
		}
	}

	lead, err := req.ToModel(shared.Actor(ctx), s.cfg.Proposal.Currency, arrival, departure, timezone.Now())
	if err != nil {
		return id, err
	}

	if err = s.repo.Insert(ctx, lead); err != nil {
		log.Error().Err(err).Msg("failed to create lead")

		return id, fmt.Errorf("failed to create lead: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), "")

	return lead.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetLeadsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lead.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllLead, req, filter)

	return cache.Remember(ctx, s.cache, cacheKey, s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GetLeadsResponse, err error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count leads")

			return res, fmt.Errorf("failed to count leads: %w", err)
		}

		models, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get leads")

			return res, fmt.Errorf("failed to get leads: %w", err)
		}

		res.FromModels(models, total, req.Limit)

		return res, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.LeadResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lead.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(cacheGetLead, id), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.LeadResponse, err error) {
		lead, err := s.lead(ctx, id)
		if err != nil {
			return res, err
		}

		res.FromModel(lead)

		return res, nil
	})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateLeadRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lead.Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	current, err := s.lead(ctx, id)
	if err != nil {
		return err
	}

	arrival, departure, stayChanged, err := req.Stay(current)
	if err != nil {
		return err
	}

	if stayChanged {
		outside, err := s.deps.EventDetails.Count(ctx, eventDetailRepo.OutsideStay(id, arrival, departure))
		if err != nil {
			log.Error().Err(err).Msg("failed to count event details outside stay")

			return fmt.Errorf("failed to count event details outside stay: %w", err)
		}

		if outside > 0 {
			return failure.BadRequestFromString(fmt.Sprintf("%d event detail(s) fall outside the new arrival and departure dates", outside))
		}
	}

	if req.ContactID != "" {
		if _, err = s.contact(ctx, req.ContactID); err != nil {
			return err
		}
	}

	if req.OrganizationID != nil {
		if err = s.ensureOrganization(ctx, *req.OrganizationID); err != nil {
			return err
		}
	}

	if req.OwnerID != "" {
		if err = s.ensureOwner(ctx, req.OwnerID); err != nil {
			return err
		}
	}

	var arrivalPtr, departurePtr *time.Time
	if stayChanged {
		arrivalPtr, departurePtr = &arrival, &departure
	}

	fields, err := req.ToFields(shared.Actor(ctx), arrivalPtr, departurePtr)
	if err != nil {
		return err
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update lead")

		return fmt.Errorf("failed to update lead: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lead.Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if lead exists")

		return fmt.Errorf("failed to check if lead exists: %w", err)
	}

	if !exist {
		return failure.NotFound("lead")
	}

	// proposals go with the lead, their PDFs are removed once the rows are gone
	proposals, err := s.deps.Proposals.GetAll(ctx, gDto.QueryParams{}, proposalRepo.ByLead(id), proposalModel.FieldFileURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to get lead proposals")

		return fmt.Errorf("failed to get lead proposals: %w", err)
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete lead")

		return fmt.Errorf("failed to delete lead: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		for _, p := range proposals {
			s.deleteFile(c, p.FileURL)
		}

		if err := s.cache.Delete(c, shared.BuildCacheKey(constant.CacheKeyProposals, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete lead proposals from cache")
		}

		s.invalidate(c, id)
	}()

	return nil
}

func (s *serviceImpl) ChangeStatus(ctx context.Context, req dto.ChangeStatusRequest, id string) (res dto.LeadResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".lead.ChangeStatus")
	defer scope.End()
	defer scope.TraceIfError(&err)

	lead, err := s.lead(ctx, id)
	if err != nil {
		return res, err
	}

	from := lead.Status
	to := req.Status

	if from == to {
		return res, failure.BadRequestFromString(fmt.Sprintf("lead is already %s", to))
	}

	if !from.CanTransitionTo(to) {
		return res, failure.BadRequestFromString(fmt.Sprintf("cannot change status from %s to %s", from, to))
	}

	if to == model.StatusLost && (req.LostReason == nil || *req.LostReason == "") {
		return res, failure.BadRequestFromString("lost_reason is required when a lead is lost")
	}

	actor := shared.Actor(ctx)
	now := timezone.Now()

	fields := map[string]any{
		model.FieldStatus:        to,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor,
		model.FieldLostReason:    nil,
		model.FieldLostAt:        nil,
		model.FieldConfirmedAt:   lead.ConfirmedAt,
	}

	lead.Status = to
	lead.LostReason = nil
	lead.LostAt = nil

	switch to {
	case model.StatusConfirmed:
		fields[model.FieldConfirmedAt] = now
		lead.ConfirmedAt = &now
	case model.StatusLost:
		fields[model.FieldLostReason] = *req.LostReason
		fields[model.FieldLostAt] = now
		lead.LostReason = req.LostReason
		lead.LostAt = &now
	case model.StatusTentative:
		fields[model.FieldConfirmedAt] = nil
		lead.ConfirmedAt = nil
	}

	activity := statusActivity(lead, from, req, actor, now)

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.UpdateTx(ctx, tx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
			return fmt.Errorf("failed to update lead status: %w", err)
		}

		if err := s.deps.Activities.InsertTx(ctx, tx, activity); err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("lead_id", id).Msg("failed to change lead status")

		return res, err
	}

	s.publishStatusChanged(ctx, lead, from, actor, now)

	go s.invalidate(context.WithoutCancel(ctx), id)

	res.FromModel(lead)

	return res, nil
}

func statusActivity(lead model.Lead, from model.Status, req dto.ChangeStatusRequest, actor string, now time.Time) activityModel.Activity {
	notes := req.Note
	if req.Status == model.StatusLost {
		reason := "Reason: " + *req.LostReason
		if notes != nil && *notes != "" {
			reason += "\n" + *notes
		}

		notes = &reason
	}

	return activityModel.Activity{
		ID:          uuid.NewString(),
		LeadID:      lead.ID,
		Type:        activityModel.TypeStatusChange,
		Subject:     fmt.Sprintf("Status changed from %s to %s", from, req.Status),
		Notes:       notes,
		ActivityAt:  now,
		AssignedTo:  actor,
		Completed:   true,
		CompletedAt: &now,
		Metadata:    gModel.NewMetadata(actor, now),
	}
}

func (s *serviceImpl) publishStatusChanged(ctx context.Context, lead model.Lead, from model.Status, actor string, now time.Time) {
	event := model.StatusChanged{
		LeadID:    lead.ID,
		EventName: lead.EventName,
		From:      from,
		To:        lead.Status,
		OwnerID:   lead.OwnerID,
		ChangedBy: actor,
		ChangedAt: now,
	}

	if lead.LostReason != nil {
		event.LostReason = *lead.LostReason
	}

	// the status change is committed, a broker outage must not fail the request
	if err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.LeadStatusChanged, kafka.Message{Key: lead.ID, Value: event}); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID).Msg("failed to publish lead status change")
	}
}

func (s *serviceImpl) lead(ctx context.Context, id string) (model.Lead, error) {
	lead, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get lead")

		return lead, fmt.Errorf("failed to get lead: %w", err)
	}

	if lead.ID == "" {
		return lead, failure.NotFound("lead")
	}

	return lead, nil
}

func (s *serviceImpl) contact(ctx context.Context, id string) (contactModel.Contact, error) {
	contact, err := s.deps.Contacts.Get(ctx, shared.FilterByID(id, contactModel.FieldID, contactModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get contact")

		return contact, fmt.Errorf("failed to get contact: %w", err)
	}

	if contact.ID == "" {
		return contact, failure.BadRequestFromString("contact does not exist")
	}

	return contact, nil
}

func (s *serviceImpl) ensureOrganization(ctx context.Context, id string) error {
	exist, err := s.deps.Organizations.Exist(ctx, shared.FilterByID(id, orgModel.FieldID, orgModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if organization exists")

		return fmt.Errorf("failed to check if organization exists: %w", err)
	}

	if !exist {
		return failure.BadRequestFromString("organization does not exist")
	}

	return nil
}

func (s *serviceImpl) ensureOwner(ctx context.Context, id string) error {
	owner, err := s.deps.Users.Get(ctx, shared.FilterByID(id, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get owner")

		return fmt.Errorf("failed to get owner: %w", err)
	}

	if owner.ID == "" || !owner.Active {
		return failure.BadRequestFromString("owner must be an active user")
	}

	return nil
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

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if id != "" {
		if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetLead, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete lead from cache")
		}
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllLead)
	shared.InvalidateCaches(ctx, s.cache, constant.CacheKeyDashboard)
}
