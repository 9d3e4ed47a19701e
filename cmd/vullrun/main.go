// Command vullrun is a thin CLI booting a Scheduler and running a demo
// tasklet: it fans out N worker tasklets, waits on a Latch gate until
// all of them have arrived, and prints the sum of the squares they
// reported. Its
// flags and exit codes are not part of any compatibility surface.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/vull-engine/vull/tasklet"
)

func main() {
	workers := flag.Int("workers", 0, "worker goroutine count (0 = GOMAXPROCS)")
	fanout := flag.Int("fanout", 16, "number of tasklets to fan out")
	flag.Parse()

	opts := []tasklet.Option{}
	if *workers > 0 {
		opts = append(opts, tasklet.WithWorkerCount(*workers))
	}
	sched := tasklet.New(opts...)

	sum := tasklet.Run(context.Background(), sched, func() int {
		latch := tasklet.NewLatch(sched, int64(*fanout))
		results := make(chan int, *fanout)

		for i := 0; i < *fanout; i++ {
			i := i
			tasklet.Schedule(sched, func() int {
				defer latch.Arrive(1)
				results <- i * i
				return i
			})
		}

		latch.Wait()
		close(results)

		total := 0
		for v := range results {
			total += v
		}
		return total
	})

	fmt.Println("sum of squares:", sum)
}
