// The presenter connects to a running engine's frame hub, decodes each wire
// buffer from its self-describing header, and renders PNG stills with a
// software canvas. It is the reference consumer and a debugging aid; the
// production GPU renderer lives in the web host.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/gorilla/websocket"

	"zap-engine/internal/presenter"
	"zap-engine/internal/protocol"
)

func main() {
	url := flag.String("url", "ws://localhost:3000/ws", "engine frame hub URL")
	outDir := flag.String("out", "frames", "output directory for PNG stills")
	every := flag.Int("every", 30, "render every Nth frame")
	count := flag.Int("count", 10, "stop after this many stills (0 = forever)")
	width := flag.Int("width", 1280, "output width")
	height := flag.Int("height", 720, "output height")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("❌ Output dir: %v", err)
	}

	log.Printf("📡 Connecting to %s", *url)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatalf("❌ Connect: %v", err)
	}
	defer conn.Close()
	log.Println("✅ Connected, waiting for frames")

	r := presenter.NewRenderer(*width, *height)
	saved := 0
	received := 0
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("❌ Read: %v", err)
		}
		if msgType != websocket.BinaryMessage || len(data)%4 != 0 {
			continue
		}
		received++
		if received%*every != 0 {
			continue
		}

		floats := decodeFloats(data)
		reader, err := protocol.ReadFrame(floats)
		if err != nil {
			log.Printf("⚠️ Bad frame: %v", err)
			continue
		}
		if !reader.Locked() {
			continue
		}

		r.RenderFrame(reader)
		path := filepath.Join(*outDir, fmt.Sprintf("frame_%06d.png", reader.FrameCounter()))
		if err := r.SavePNG(path); err != nil {
			log.Printf("⚠️ %v", err)
			continue
		}
		saved++
		log.Printf("🖼  %s (instances=%d sdf=%d effects=%d batches=%d)",
			path, reader.InstanceCount(), reader.SDFCount(),
			reader.EffectsVertexCount(), reader.LayerBatchCount())

		if *count > 0 && saved >= *count {
			log.Printf("✅ Done: %d stills in %s", saved, *outDir)
			return
		}
	}
}

func decodeFloats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
