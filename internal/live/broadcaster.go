package live

import "sync"

// Broadcaster раздает применённые обновления подписчикам (SSE).
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Update]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[chan Update]struct{}),
	}
}

// Subscribe регистрирует подписчика и возвращает его канал.
func (b *Broadcaster) Subscribe() chan Update {
	ch := make(chan Update, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe удаляет подписчика и закрывает канал.
func (b *Broadcaster) Unsubscribe(ch chan Update) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish отправляет обновление всем; отстающий подписчик его пропускает.
func (b *Broadcaster) Publish(u Update) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- u:
		default:
		}
	}
	b.mu.Unlock()
}
