package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"voicepad-be/internal/dto"
	"voicepad-be/internal/entity"
	"voicepad-be/internal/repository/specification"
	"voicepad-be/internal/repository/unitofwork"
	"voicepad-be/pkg/embedding"
	"voicepad-be/pkg/events"
	pktNats "voicepad-be/pkg/nats"

	"github.com/google/uuid"
)

type INoteService interface {
	Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowNoteResponse, error)
	List(ctx context.Context, query *dto.ListNotesQuery) ([]*dto.ShowNoteResponse, error)
	Update(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SemanticSearch(ctx context.Context, search string) ([]*dto.SemanticSearchResponse, error)
}

type noteService struct {
	uowFactory        unitofwork.RepositoryFactory
	publisherService  IPublisherService
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
) INoteService {
	return &noteService{
		uowFactory:        uowFactory,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (c *noteService) Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note := entity.Note{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		CreatedAt: time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	if err := c.publishEmbedJob(ctx, note.Id); err != nil {
		return nil, err
	}

	// Notification is auxiliary; a publish failure must not fail the request.
	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "NOTE_CREATED",
			Data: map[string]interface{}{
				"title":   note.Title,
				"note_id": note.Id,
			},
			OccurredAt: time.Now(),
		}
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish NOTE_CREATED event: %v\n", err)
		}
	}

	return &dto.CreateNoteResponse{
		Id: note.Id,
	}, nil
}

func (c *noteService) publishEmbedJob(ctx context.Context, noteId uuid.UUID) error {
	msgPayload := dto.PublishEmbedNoteMessage{
		NoteId: noteId,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *noteService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil // Not found
	}

	return &dto.ShowNoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

func (c *noteService) List(ctx context.Context, query *dto.ListNotesQuery) ([]*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{}
	if query.Search != "" {
		specs = append(specs, specification.NoteSearchQuery{Query: query.Search})
	}
	if query.Tag != "" {
		specs = append(specs, specification.HasTag{Tag: query.Tag})
	}
	specs = append(specs, specification.OrderBy{Field: "created_at", Desc: true})
	if query.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: query.Limit, Offset: query.Offset})
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ShowNoteResponse, len(notes))
	for i, n := range notes {
		res[i] = &dto.ShowNoteResponse{
			Id:        n.Id,
			Title:     n.Title,
			Content:   n.Content,
			Tags:      n.Tags,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}
	}
	return res, nil
}

func (c *noteService) Update(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil
	}

	now := time.Now()
	note.Title = req.Title
	note.Content = req.Content
	note.Tags = req.Tags
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	if err := c.publishEmbedJob(ctx, note.Id); err != nil {
		return nil, err
	}

	return &dto.UpdateNoteResponse{
		Id: note.Id,
	}, nil
}

func (c *noteService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if note == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

// semanticSearchThreshold is the minimum cosine similarity for a chunk to
// count as a hit. Below it, results read as noise to users.
const semanticSearchThreshold = 0.35

func (c *noteService) SemanticSearch(ctx context.Context, search string) ([]*dto.SemanticSearchResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if c.embeddingProvider != nil {
		res, err := c.semanticSearch(ctx, uow, search)
		if err == nil && len(res) > 0 {
			return res, nil
		}
		if err != nil {
			fmt.Printf("[WARN] Semantic search failed, falling back to literal: %v\n", err)
		}
	}

	return c.literalSearch(ctx, uow, search)
}

func (c *noteService) semanticSearch(ctx context.Context, uow unitofwork.UnitOfWork, search string) ([]*dto.SemanticSearchResponse, error) {
	embedRes, err := c.embeddingProvider.Generate(search, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	scored, err := uow.NoteEmbeddingRepository().SearchSimilarWithScore(
		ctx, embedRes.Embedding.Values, 10, semanticSearchThreshold,
	)
	if err != nil {
		return nil, err
	}

	// Collapse chunks: keep the best score per note, preserve score order.
	bestScore := make(map[uuid.UUID]float64)
	order := []uuid.UUID{}
	for _, s := range scored {
		if _, seen := bestScore[s.Embedding.NoteId]; !seen {
			bestScore[s.Embedding.NoteId] = s.Similarity
			order = append(order, s.Embedding.NoteId)
		}
	}
	if len(order) == 0 {
		return nil, nil
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specification.ByIDs{IDs: order})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.Note, len(notes))
	for _, n := range notes {
		byId[n.Id] = n
	}

	res := []*dto.SemanticSearchResponse{}
	for _, id := range order {
		n, ok := byId[id]
		if !ok {
			continue
		}
		score := bestScore[id]
		res = append(res, &dto.SemanticSearchResponse{
			Id:             n.Id,
			Title:          n.Title,
			Content:        n.Content,
			Tags:           n.Tags,
			CreatedAt:      n.CreatedAt,
			UpdatedAt:      n.UpdatedAt,
			SearchType:     "semantic",
			RelevanceScore: &score,
		})
	}
	return res, nil
}

func (c *noteService) literalSearch(ctx context.Context, uow unitofwork.UnitOfWork, search string) ([]*dto.SemanticSearchResponse, error) {
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteSearchQuery{Query: search},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 20, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SemanticSearchResponse, len(notes))
	for i, n := range notes {
		res[i] = &dto.SemanticSearchResponse{
			Id:         n.Id,
			Title:      n.Title,
			Content:    n.Content,
			Tags:       n.Tags,
			CreatedAt:  n.CreatedAt,
			UpdatedAt:  n.UpdatedAt,
			SearchType: "literal",
		}
	}
	return res, nil
}
