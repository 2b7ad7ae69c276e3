// Command loadgen fires a stream of randomized buy/sell/cancel commands
// at a running engine over the text transport, for manual throughput
// checks. It is not part of the core and exercises only transport.TextSource
// from the client side.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", "localhost:9090", "engine address")
	symbol := flag.String("symbol", "ABC", "instrument to trade")
	orders := flag.Int("orders", 10000, "number of commands to send")
	basePrice := flag.Int("base-price", 100, "mid price used for randomization")
	spread := flag.Int("spread", 10, "price randomization spread around base-price")
	cancelEvery := flag.Int("cancel-every", 7, "cancel a prior order every N submissions (0 disables)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	defer w.Flush()

	sent := make([]uint32, 0, *orders)
	start := time.Now()

	for i := 1; i <= *orders; i++ {
		id := uint32(i)

		if *cancelEvery > 0 && i%*cancelEvery == 0 && len(sent) > 0 {
			target := sent[rng.Intn(len(sent))]
			fmt.Fprintf(w, "CANCEL %d\n", target)
			continue
		}

		verb := "BUY"
		if rng.Intn(2) == 0 {
			verb = "SELL"
		}
		price := *basePrice + rng.Intn(2*(*spread)+1) - *spread
		count := 1 + rng.Intn(100)

		fmt.Fprintf(w, "%s %d %s %d %d\n", verb, id, *symbol, price, count)
		sent = append(sent, id)

		if i%1000 == 0 {
			w.Flush()
		}
	}

	w.Flush()
	elapsed := time.Since(start)
	fmt.Fprintf(os.Stderr, "sent %d commands in %s (%.0f/s)\n", *orders, elapsed, float64(*orders)/elapsed.Seconds())
}
