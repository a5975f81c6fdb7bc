// Package audit persists a trail of mutating API operations. Handlers publish
// events on a bus; a single async subscriber writes them to the database so
// request latency never depends on the audit insert.
package audit

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/repository"
	"go.uber.org/zap"
)

const Topic = "audit:record"

// Actions
const (
	ActionLogin         = "auth.login"
	ActionLoginFailed   = "auth.login_failed"
	ActionRegister      = "user.create"
	ActionUserUpdate    = "user.update"
	ActionUserDelete    = "user.delete"
	ActionCustomerSave  = "customer.save"
	ActionCustomerDel   = "customer.delete"
	ActionProductSave   = "product.save"
	ActionProductDelete = "product.delete"
	ActionOrderCreate   = "order.create"
	ActionOrderUpdate   = "order.update"
	ActionOrderDelete   = "order.delete"
	ActionItemSave      = "order_item.save"
	ActionItemDelete    = "order_item.delete"
	ActionReport        = "report.generate"
	ActionJobRun        = "job.run"
)

type Event struct {
	Actor  string
	Action string
	Target string
	Detail string
	IP     string
	At     time.Time
}

type Recorder struct {
	bus  EventBus.Bus
	node *snowflake.Node
	repo repository.AuditLogRepository
}

func NewRecorder(store *repository.Store, nodeID int64) (*Recorder, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "snowflake node")
	}
	r := &Recorder{bus: EventBus.New(), node: node, repo: store.AuditLogs()}
	if err := r.bus.SubscribeAsync(Topic, r.persist, true); err != nil {
		return nil, errors.Wrap(err, "subscribe audit topic")
	}
	return r, nil
}

// Record queues an event; it never blocks on the database
func (r *Recorder) Record(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	r.bus.Publish(Topic, e)
}

// Flush waits until every queued event is written
func (r *Recorder) Flush() {
	r.bus.WaitAsync()
}

func (r *Recorder) Close() {
	r.Flush()
	_ = r.bus.Unsubscribe(Topic, r.persist)
}

func (r *Recorder) persist(e Event) {
	entry := &domain.AuditLog{
		ID:        r.node.Generate().Int64(),
		Actor:     e.Actor,
		Action:    e.Action,
		Target:    e.Target,
		Detail:    e.Detail,
		IP:        e.IP,
		CreatedAt: e.At.UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.repo.Create(ctx, entry); err != nil {
		zap.S().Errorf("audit %s by %s not saved: %v", e.Action, e.Actor, err)
	}
}
