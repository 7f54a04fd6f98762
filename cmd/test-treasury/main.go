package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jwaldner/breakingbad/internal/treasury"
)

func main() {
	fmt.Println("🏛️ Testing Treasury API integration...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := treasury.NewClient()

	// Test fetching current risk-free rate
	rate, err := client.RiskFreeRate(ctx)
	if err != nil {
		log.Printf("❌ Error fetching Treasury rate: %v", err)
	} else {
		fmt.Printf("✅ Current Treasury Bill Rate (Risk-Free): %.6f (%.3f%%) as of %s\n",
			rate.Rate, rate.Rate*100, rate.AsOf.Format("2006-01-02"))
	}

	// Test last known rate functionality
	withFallback := client.RateWithFallback(ctx)
	fmt.Printf("✅ Rate with fallback: %.6f (%.3f%%) from %s\n", withFallback.Rate, withFallback.Rate*100, withFallback.Source)

	if err == nil {
		fmt.Println("🎉 Treasury API integration successful!")
	}
}
