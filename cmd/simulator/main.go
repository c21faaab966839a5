package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"memories/simulator"
)

func main() {
	config := simulator.DefaultSimConfig()

	flag.StringVar(&config.EngineURL, "url", config.EngineURL, "base URL of the Memories API")
	flag.IntVar(&config.NumUsers, "users", config.NumUsers, "number of users to register")
	flag.IntVar(&config.PostsPerUser, "posts", config.PostsPerUser, "posts created by each user")
	flag.IntVar(&config.LikeRounds, "rounds", config.LikeRounds, "like toggles per user")
	flag.Float64Var(&config.CommentRate, "comment-rate", config.CommentRate, "chance of commenting after a toggle")
	flag.IntVar(&config.NumWorkers, "workers", config.NumWorkers, "concurrent registration and post workers")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall simulation time limit")
	flag.Parse()

	log.Printf("Starting simulation with configuration:")
	log.Printf("- Engine URL: %s", config.EngineURL)
	log.Printf("- Number of users: %d", config.NumUsers)
	log.Printf("- Posts per user: %d", config.PostsPerUser)
	log.Printf("- Like rounds per user: %d", config.LikeRounds)
	log.Printf("- Zipf parameter: %.2f", config.ZipfS)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sim := simulator.NewSimulator(config)
	report, err := sim.Run(ctx)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	metrics := sim.GetMetrics()
	log.Printf("Simulation completed. Final metrics:")
	log.Printf("- Total users: %d", metrics.TotalUsers)
	log.Printf("- Total posts: %d", metrics.TotalPosts)
	log.Printf("- Like toggles: %d", metrics.TotalToggles)
	log.Printf("- Comments: %d", metrics.TotalComments)
	log.Printf("- Average latency: %v", metrics.AverageLatency)
	log.Printf("- Requests: %d ok, %d failed (%.1f req/sec)", metrics.SuccessCount, metrics.ErrorCount, metrics.RequestsPerSecond)

	for _, m := range report.Mismatches {
		log.Printf("Inconsistent post %s: likeCount=%d likes=%v expected=%v", m.PostID, m.LikeCount, m.Likes, m.Expected)
	}
	if !report.Consistent() {
		os.Exit(1)
	}
	log.Printf("All %d posts consistent", report.PostsChecked)
}
