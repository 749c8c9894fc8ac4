// Command arrayemu runs the in-memory device-array emulator behind a real
// TCP listener using the same framing internal/transport/tcp speaks, and
// announces itself over mDNS as a _phasedarray._tcp service. arrayctl does
// not browse for it: it connects to the address given in its config.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
	"github.com/golang/geo/r3"
	"github.com/spf13/pflag"

	"github.com/phasedctl/hostdriver/internal/emulator"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/wire"
)

const serviceType = "_phasedarray._tcp"

func main() {
	port := pflag.IntP("port", "p", 9100, "TCP port to listen on")
	numDevices := pflag.IntP("devices", "n", 1, "number of emulated devices")
	version := pflag.StringP("version", "V", "v12", "emulated firmware version: v10, v11, v12, v12.1")
	name := pflag.StringP("name", "N", "arrayemu", "mDNS instance name")
	pflag.Parse()

	ver, err := parseVersion(*version)
	if err != nil {
		log.Fatal("bad --version", "err", err)
	}

	geo := flatGeometry(*numDevices)
	emu := emulator.New(ver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := emu.Open(ctx, geo); err != nil {
		log.Fatal("opening emulator", "err", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatal("listen failed", "err", err)
	}
	defer listener.Close()

	go announce(ctx, *name, *port)

	log.Info("arrayemu listening", "port", *port, "devices", *numDevices, "version", ver)
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Error("accept failed", "err", err)
			continue
		}
		go serve(conn, emu)
	}
}

func parseVersion(s string) (firmware.Version, error) {
	switch s {
	case "v10":
		return firmware.V10, nil
	case "v11":
		return firmware.V11, nil
	case "v12":
		return firmware.V12, nil
	case "v12.1":
		return firmware.V12_1, nil
	default:
		return 0, fmt.Errorf("unrecognized version %q", s)
	}
}

func flatGeometry(n int) *geometry.Geometry {
	local := geometry.StandardArrayLayout(14, 18)
	devices := make([]geometry.Device, n)
	for i := 0; i < n; i++ {
		pos := r3.Vector{X: float64(i) * 0.2, Y: 0, Z: 0}
		devices[i] = geometry.NewDevice(i, pos, geometry.Identity(), local, false)
	}
	return geometry.NewGeometry(devices)
}

func announce(ctx context.Context, name string, port int) {
	cfg := dnssd.Config{
		Name: name,
		Type: serviceType,
		Port: port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		log.Error("building dnssd service", "err", err)
		return
	}
	responder, err := dnssd.NewResponder()
	if err != nil {
		log.Error("building dnssd responder", "err", err)
		return
	}
	if _, err := responder.Add(service); err != nil {
		log.Error("adding dnssd service", "err", err)
		return
	}
	if err := responder.Respond(ctx); err != nil && ctx.Err() == nil {
		log.Error("dnssd responder stopped", "err", err)
	}
}

func serve(conn net.Conn, emu *emulator.Emulator) {
	defer conn.Close()
	ctx := context.Background()
	frameSize := wire.HeaderSize + wire.PayloadSize

	for {
		var countBuf [4]byte
		if _, err := io.ReadFull(conn, countBuf[:]); err != nil {
			if err != io.EOF {
				log.Debug("client read closed", "err", err)
			}
			return
		}
		count := int(binary.LittleEndian.Uint32(countBuf[:]))

		raw := make([]byte, count*frameSize)
		if _, err := io.ReadFull(conn, raw); err != nil {
			log.Error("reading tx batch", "err", err)
			return
		}
		tx := make([]wire.TxMessage, count)
		for i := range tx {
			tx[i].Decode(raw[i*frameSize : (i+1)*frameSize])
		}

		if err := emu.Send(ctx, tx); err != nil {
			log.Error("emulator send failed", "err", err)
			return
		}

		rx := make([]wire.RxMessage, count)
		if err := emu.Receive(ctx, rx); err != nil {
			log.Error("emulator receive failed", "err", err)
			return
		}

		out := make([]byte, 2*count)
		for i, m := range rx {
			out[2*i] = m.Data
			out[2*i+1] = m.Ack
		}
		if _, err := conn.Write(out); err != nil {
			log.Debug("client write closed", "err", err)
			return
		}
	}
}
