// Command tcplistener prints the request line of every connection it gets,
// as the web server would see it, and answers each with an empty page.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/Brownie44l1/webserver/internal/request"
	"github.com/Brownie44l1/webserver/internal/response"
)

func main() {
	addr := flag.String("addr", ":42069", "address to listen on")
	flag.Parse()

	listener, err := net.Listen("tcp4", *addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "listen:", err)
		os.Exit(1)
	}
	defer listener.Close()
	fmt.Printf("Listening on %s...\n", listener.Addr())

	builder := response.NewBuilder(response.DefaultMaxHeadSize)
	buf := make([]byte, 4096)

	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Println("Accept error:", err)
			continue
		}

		handleConnection(conn, builder, buf)
	}
}

func handleConnection(conn net.Conn, builder *response.Builder, buf []byte) {
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		fmt.Println("set deadline:", err)
	}

	req, err := request.Read(conn, buf)
	if err != nil {
		fmt.Println("no request:", err)
		return
	}

	fmt.Println("Request Line")
	fmt.Printf("  Method:  %q\n", req.Method)
	fmt.Printf("  Path:    %q\n", req.Path)
	fmt.Printf("  Version: %q\n", req.Version)
	fmt.Printf("  GET:     %t\n", req.IsGet())

	w := response.NewWriter(conn, builder, nil)
	if err := w.WriteHead(response.StatusOK, 0, time.Now()); err != nil {
		fmt.Println("write error:", err)
		return
	}
	if err := w.WriteBody(strings.NewReader("")); err != nil {
		fmt.Println("write error:", err)
	}
}
