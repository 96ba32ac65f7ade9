package control

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"earshot/internal/config"
)

const dialTimeout = 2 * time.Second

// request sends one op over the control socket and decodes the reply into out.
func request(cfg *config.Config, op string, out any) error {
	conn, err := net.DialTimeout("unix", cfg.Paths.SocketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("cannot connect to daemon (is it running?): %w", err)
	}
	defer func() { _ = conn.Close() }()
	if err := json.NewEncoder(conn).Encode(Request{Op: op}); err != nil {
		return err
	}
	return json.NewDecoder(conn).Decode(out)
}
