package chainutils

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// IPv4ToInt packs an IPv4 address into the integer form serve-axon expects.
func IPv4ToInt(ip net.IP) (uint32, error) {
	v4 := ip.To4()
	if v4 == nil {
		return 0, fmt.Errorf("not an IPv4 address: %s", ip)
	}
	return binary.BigEndian.Uint32(v4), nil
}

var ipCheckServices = []string{
	"https://checkip.amazonaws.com",
	"https://api.ipify.org",
	"https://icanhazip.com",
}

// GetExternalIPInt discovers the node's external IPv4 address and returns it
// in integer form. Services are tried in order until one answers.
func GetExternalIPInt() (uint32, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil

	for _, url := range ipCheckServices {
		resp, err := client.Get(url)
		if err != nil {
			continue
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
		resp.Body.Close()
		if err != nil {
			continue
		}
		ip := net.ParseIP(strings.TrimSpace(string(body)))
		if ip == nil {
			continue
		}
		if v, err := IPv4ToInt(ip); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("all IP detection services failed")
}
