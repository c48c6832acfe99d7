// One-shot vibration command sender, mostly useful for testing a running
// publisher from another terminal.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/aviralksingh/xbox-control/internal/pkg/proto"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <device_id> <left> <right> [duration_ms] [host] [port]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  left/right: motor magnitudes 0-65535, 0 0 stops the current effect\n")
	fmt.Fprintf(os.Stderr, "  default destination: 127.0.0.1:%d\n", proto.VibrationPort(proto.DefaultEventPort))
	os.Exit(2)
}

func parseUint(s string, bits int, what string) uint64 {
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s %q\n", what, s)
		usage()
	}
	return v
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 3 || len(args) > 6 {
		usage()
	}

	deviceID := parseUint(args[0], 8, "device_id")
	left := parseUint(args[1], 16, "left")
	right := parseUint(args[2], 16, "right")

	var duration uint64
	if len(args) >= 4 {
		duration = parseUint(args[3], 32, "duration_ms")
	}

	host := "127.0.0.1"
	if len(args) >= 5 {
		host = args[4]
	}
	port := proto.VibrationPort(proto.DefaultEventPort)
	if len(args) >= 6 {
		port = int(parseUint(args[5], 16, "port"))
	}

	pkt := proto.VibrationPacket{
		DeviceID:   uint8(deviceID),
		LeftMotor:  uint16(left),
		RightMotor: uint16(right),
		DurationMs: uint32(duration),
	}

	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	_, err = conn.Write(pkt.Marshal())
	if err != nil {
		fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
		os.Exit(1)
	}

	if left == 0 && right == 0 {
		fmt.Printf("sent stop command for device %d to %s:%d\n", deviceID, host, port)
	} else {
		fmt.Printf("sent rumble strong=%d weak=%d duration=%dms for device %d to %s:%d\n",
			left, right, duration, deviceID, host, port)
	}
}
