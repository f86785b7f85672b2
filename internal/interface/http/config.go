package httpservice

import (
	"fmt"
	"net"
)

type Config struct {
	Port      uint32
	JWTSecret string
	// RateLimit is the number of mutating requests per second allowed to
	// each caller, 0 disables rate limiting.
	RateLimit float64
	RateBurst int
}

func (c Config) Validate() error {
	lis, err := net.Listen("tcp", c.address())
	if err != nil {
		return fmt.Errorf("invalid port: %s", err)
	}
	// nolint:all
	defer lis.Close()

	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit, must be positive or 0 to disable it")
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return fmt.Errorf("invalid rate burst, must be positive")
	}
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}
