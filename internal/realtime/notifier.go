package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const walletChannel = "wallet:events"

type walletEvent struct {
	Type      string    `json:"type"`
	AccountID uuid.UUID `json:"account_id"`
	Balance   int64     `json:"balance"`
}

// Notifier pushes wallet updates to connected clients. Events go through Redis
// pub/sub first so every instance behind the load balancer can deliver to the
// connections it holds.
type Notifier struct {
	Hub *Hub
	RDB *redis.Client
}

func NewNotifier(hub *Hub, rdb *redis.Client) *Notifier {
	return &Notifier{Hub: hub, RDB: rdb}
}

// NotifyBalance publishes the account's new balance after a wallet mutation.
func (n *Notifier) NotifyBalance(ctx context.Context, accountID uuid.UUID, balance int64) {
	ev := walletEvent{Type: "wallet_update", AccountID: accountID, Balance: balance}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notifier: marshal error: %v", err)
		return
	}

	if n.RDB != nil {
		if err := n.RDB.Publish(ctx, walletChannel, payload).Err(); err != nil {
			log.Printf("notifier: redis publish failed, delivering locally: %v", err)
			n.Hub.sendRaw(accountID, payload)
		}
		return
	}
	n.Hub.sendRaw(accountID, payload)
}

// Run subscribes to the wallet channel and forwards events to local connections.
// Blocks; jalankan sebagai goroutine dari main.
func (n *Notifier) Run(ctx context.Context) {
	if n.RDB == nil {
		return
	}
	sub := n.RDB.Subscribe(ctx, walletChannel)
	defer sub.Close()

	for msg := range sub.Channel() {
		var ev walletEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("notifier: bad event payload: %v", err)
			continue
		}
		n.Hub.sendRaw(ev.AccountID, []byte(msg.Payload))
	}
}
