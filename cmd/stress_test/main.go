package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/sofa-configurator/internal/adapter/handler"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC server address")
	totalRequests := flag.Int("n", 500, "number of concurrent Configure calls")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect grpc: %v", err)
	}
	defer conn.Close()

	client := handler.NewConfiguratorClient(conn)
	req := &handler.ConfigureRequest{
		Material: "leather",
		Color:    "black",
		Size:     "three_seater",
		Addons:   []string{"recliner", "storage", "headrest"},
	}

	// Reference response every concurrent call must match.
	ref, err := client.Configure(ctx, req)
	if err != nil {
		log.Fatalf("reference call failed: %v", err)
	}
	want, _ := json.Marshal(ref)

	var successCount atomic.Int32
	var mismatchCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := client.Configure(ctx, req)
			if err != nil {
				failCount.Add(1)
				return
			}
			got, _ := json.Marshal(resp)
			if string(got) != string(want) {
				mismatchCount.Add(1)
				return
			}
			successCount.Add(1)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	mismatch := mismatchCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Identical:        %d\n", success)
	fmt.Printf("Mismatched:       %d\n", mismatch)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	if ref.Pricing != nil {
		fmt.Printf("Final Price:      %.2f\n", ref.Pricing.FinalPrice)
	}
	fmt.Println("==========================================")

	if success == int32(*totalRequests) {
		fmt.Println("PASS: every response matched the reference quote")
		return
	}
	fmt.Printf("FAIL: expected %d identical responses, got %d\n", *totalRequests, success)
	os.Exit(1)
}
