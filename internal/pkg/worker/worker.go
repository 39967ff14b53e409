package worker

import (
	"time"

	offerService "vpn_billing/internal/domain/offer/service"

	"go.uber.org/zap"
)

// OfferTask describes a marketing trigger that should produce a discount offer.
type OfferTask struct {
	UserID           string
	SubscriptionID   string
	NotificationType string
	DiscountPercent  int
	ValidHours       int
	OfferType        string
	Retry            int
}

// WorkerPool consumes offer tasks asynchronously so trigger ingestion
// never blocks on database writes.
type WorkerPool struct {
	TaskQueue  chan OfferTask
	RetryQueue chan OfferTask
	Offers     offerService.OfferService
	WorkerNum  int
	MaxRetry   int
	Logger     *zap.Logger
}

func NewWorkerPool(offers offerService.OfferService, workerNum int, bufferSize int, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		TaskQueue:  make(chan OfferTask, bufferSize),
		RetryQueue: make(chan OfferTask, bufferSize/2),
		Offers:     offers,
		WorkerNum:  workerNum,
		MaxRetry:   3,
		Logger:     logger,
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	go p.retryWorker()
	p.Logger.Info("offer worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *WorkerPool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.processTask(task); err != nil {
			p.Logger.Warn("offer task failed",
				zap.Int("worker", id),
				zap.String("user_id", task.UserID),
				zap.String("notification_type", task.NotificationType),
				zap.Error(err))

			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
				default:
					p.logFailedTask(task, err)
				}
			} else {
				p.logFailedTask(task, err)
			}
		}
	}
}

func (p *WorkerPool) retryWorker() {
	for task := range p.RetryQueue {
		// Back off before re-queueing so transient DB errors can clear.
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
		default:
			p.logFailedTask(task, nil)
		}
	}
}

func (p *WorkerPool) processTask(task OfferTask) error {
	var subscriptionID *string
	if task.SubscriptionID != "" {
		subscriptionID = &task.SubscriptionID
	}

	_, err := p.Offers.Upsert(offerService.UpsertParams{
		UserID:           task.UserID,
		SubscriptionID:   subscriptionID,
		NotificationType: task.NotificationType,
		DiscountPercent:  task.DiscountPercent,
		ValidHours:       task.ValidHours,
		OfferType:        task.OfferType,
	})
	return err
}

func (p *WorkerPool) logFailedTask(task OfferTask, err error) {
	p.Logger.Error("offer task dropped",
		zap.String("user_id", task.UserID),
		zap.String("notification_type", task.NotificationType),
		zap.Int("retry", task.Retry),
		zap.Error(err))
}

// AddTask enqueues a task without blocking; a full queue drops the task.
func (p *WorkerPool) AddTask(task OfferTask) bool {
	select {
	case p.TaskQueue <- task:
		return true
	default:
		p.logFailedTask(task, nil)
		return false
	}
}
