package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"saraswati-be/internal/dto"
	"saraswati-be/internal/repository/specification"
	"saraswati-be/internal/repository/unitofwork"
	"saraswati-be/pkg/events"
	pktNats "saraswati-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IIndexerService interface {
	Consume(ctx context.Context) error
}

// indexerService drains index signals off the internal pubsub topic and
// forwards the search index's view of the note to the event bus, where
// downstream indexers consume it. Only merged content ever reaches the
// index; drafts and in-review versions never leave the workflow.
type indexerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) IIndexerService {
	return &indexerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (cs *indexerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexSignalMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal index signal: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing index signal %s for NoteId: %s", payload.Action, payload.NoteId)

	if payload.Action == dto.IndexActionRetract {
		cs.forward(ctx, msg, events.BaseEvent{
			Type: events.TypeIndexRetracted,
			Data: map[string]interface{}{
				"note_id": payload.NoteId,
			},
			OccurredAt: time.Now(),
		})
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: payload.NoteId})
	if err != nil {
		log.Printf("[ERROR] Failed to get note %s: %v", payload.NoteId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if note == nil || note.ApprovedVersionId == nil {
		log.Printf("[WARN] Note %s has nothing to index", payload.NoteId)
		msg.Ack()
		return
	}

	version, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *note.ApprovedVersionId})
	if err != nil {
		log.Printf("[ERROR] Failed to get version %s: %v", note.ApprovedVersionId, err)
		msg.Nack()
		return
	}
	if version == nil {
		log.Printf("[ERROR] Approved version not found for note %s", payload.NoteId)
		msg.Ack()
		return
	}

	cs.forward(ctx, msg, events.BaseEvent{
		Type: events.TypeIndexPublished,
		Data: map[string]interface{}{
			"note_id":       note.Id,
			"version_id":    version.Id,
			"version_index": version.VersionIndex,
			"title":         version.Title,
			"content":       version.Content,
			"tags":          version.Tags,
		},
		OccurredAt: time.Now(),
	})
}

func (cs *indexerService) forward(ctx context.Context, msg *message.Message, evt events.BaseEvent) {
	if cs.eventPublisher == nil {
		msg.Ack()
		return
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[ERROR] Failed to forward index event: %v", err)
		msg.Nack()
		return
	}
	msg.Ack()
}
