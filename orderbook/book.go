// Package orderbook implements the per-instrument order book (C3):
// resting buys and sells ordered by price-time priority, matched against
// incoming orders under a single per-book mutex.
//
// Price levels are kept in a red-black tree (github.com/emirpasic/gods/v2),
// the same structure the teacher exchange uses for its sharded price
// index, ordered so that Left() always yields the best price for that
// side. Within a level, resting orders form a FIFO list: the front of the
// list is always the earliest-arrived order at that price, so a partial
// fill that leaves an order resting needs no reinsertion — its position in
// both the tree and the list is untouched.
package orderbook

import (
	"container/list"
	"sync"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"matchcore/clock"
	"matchcore/domain"
	"matchcore/sink"
)

// restingOrder is a live order waiting for a counterparty, per spec.md §3.
type restingOrder struct {
	OrderID   uint32
	Price     uint32
	Count     uint32
	ExecID    uint32
	Timestamp uint64
}

// priceLevel holds every resting order at one price, in arrival order.
type priceLevel struct {
	price  uint32
	orders *list.List // of *restingOrder
}

// location lets cancel find an order in O(1) instead of spec.md's baseline
// linear scan, per §9's design note ("a production implementation should
// index resting orders by order_id ... this does not change any
// observable event").
type location struct {
	side  domain.Side
	level *priceLevel
	elem  *list.Element
}

// OrderBook is one instrument's resting buys and sells. All exported
// methods hold book-wide mutual exclusion for their entire duration
// (spec.md §4.3): two concurrent submits against the same book are
// strictly serialized, while books for different instruments never
// contend with each other.
type OrderBook struct {
	mu sync.Mutex

	symbol string
	clock  *clock.Source
	sink   sink.EventSink

	bids *rbt.Tree[uint32, *priceLevel] // best = highest price
	asks *rbt.Tree[uint32, *priceLevel] // best = lowest price

	byID map[uint32]*location
}

// New creates an empty book for one instrument symbol. clk and evSink are
// shared across every book in the process so that timestamps and the
// event log stay globally ordered (spec.md §5).
func New(symbol string, clk *clock.Source, evSink sink.EventSink) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		clock:  clk,
		sink:   evSink,
		bids:   rbt.NewWith[uint32, *priceLevel](descending),
		asks:   rbt.NewWith[uint32, *priceLevel](ascending),
		byID:   make(map[uint32]*location),
	}
}

func ascending(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func descending(a, b uint32) int { return ascending(b, a) }

// SubmitBuy matches cmd against resting sells and, if quantity remains,
// rests the remainder as a new resting buy. It returns the set of order
// ids whose state changed: ids fully consumed by the match, plus cmd's own
// id if it came to rest. This is the list the caller (ingest.Worker) uses
// to update the id index (spec.md §4.4's cross-index consistency rule).
func (b *OrderBook) SubmitBuy(cmd domain.Command) []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submit(cmd.OrderID, cmd.Price, cmd.Count, domain.SideBuy, b.asks, func(restingPrice, incomingPrice uint32) bool {
		return restingPrice <= incomingPrice
	})
}

// SubmitSell is symmetric to SubmitBuy against resting buys.
func (b *OrderBook) SubmitSell(cmd domain.Command) []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submit(cmd.OrderID, cmd.Price, cmd.Count, domain.SideSell, b.bids, func(restingPrice, incomingPrice uint32) bool {
		return restingPrice >= incomingPrice
	})
}

// submit implements spec.md §4.3 steps 1-2 generically over the incoming
// side; opposite is the book being matched against and crosses reports
// whether a resting price still crosses the incoming limit price.
func (b *OrderBook) submit(orderID, price, count uint32, side domain.Side, opposite *rbt.Tree[uint32, *priceLevel], crosses func(restingPrice, incomingPrice uint32) bool) []uint32 {
	var changed []uint32

	for count > 0 {
		node := opposite.Left()
		if node == nil || !crosses(node.Key, price) {
			break
		}
		level := node.Value
		front := level.orders.Front()
		resting := front.Value.(*restingOrder)

		traded := min(resting.Count, count)
		resting.ExecID++
		ts := b.clock.Now()
		b.sink.Executed(resting.OrderID, orderID, resting.ExecID, resting.Price, traded, ts)

		resting.Count -= traded
		count -= traded

		if resting.Count == 0 {
			level.orders.Remove(front)
			delete(b.byID, resting.OrderID)
			if level.orders.Len() == 0 {
				opposite.Remove(level.price)
			}
			changed = append(changed, resting.OrderID)
		}
	}

	if count > 0 {
		ts := b.clock.Now()
		resting := &restingOrder{OrderID: orderID, Price: price, Count: count, Timestamp: ts}
		own := b.restingTree(side)
		level, ok := own.Get(price)
		if !ok {
			level = &priceLevel{price: price, orders: list.New()}
			own.Put(price, level)
		}
		elem := level.orders.PushBack(resting)
		b.byID[orderID] = &location{side: side, level: level, elem: elem}

		b.sink.Added(orderID, b.symbol, price, count, side == domain.SideSell, ts)
		changed = append(changed, orderID)
	}

	return changed
}

func (b *OrderBook) restingTree(side domain.Side) *rbt.Tree[uint32, *priceLevel] {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// Cancel removes order_id's resting order, if any, and reports the
// outcome to the sink. It returns whether a live order was found and
// removed.
func (b *OrderBook) Cancel(orderID uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	loc, ok := b.byID[orderID]
	if !ok {
		b.sink.Deleted(orderID, false, b.clock.Now())
		return false
	}

	delete(b.byID, orderID)
	loc.level.orders.Remove(loc.elem)
	if loc.level.orders.Len() == 0 {
		b.restingTree(loc.side).Remove(loc.level.price)
	}

	b.sink.Deleted(orderID, true, b.clock.Now())
	return true
}

// Contains reports whether order_id currently names a live resting order
// in this book. It takes the book lock; callers that need this as part of
// a larger atomic decision should not rely on it remaining true afterward.
func (b *OrderBook) Contains(orderID uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.byID[orderID]
	return ok
}

// BestBid returns the highest resting buy price, or 0 if there is none.
func (b *OrderBook) BestBid() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if node := b.bids.Left(); node != nil {
		return node.Key
	}
	return 0
}

// BestAsk returns the lowest resting sell price, or 0 if there is none.
func (b *OrderBook) BestAsk() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if node := b.asks.Left(); node != nil {
		return node.Key
	}
	return 0
}
