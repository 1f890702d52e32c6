/*
 * MIT License
 *
 * Copyright (c) 2025 gotaps contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ikhovind/gotaps"
	"github.com/ikhovind/gotaps/connection"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/log"
	"github.com/ikhovind/gotaps/message"
)

func newInitiateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "initiate <host> <port>",
		Short: "Initiate a connection to host:port and relay stdin to it",
		Args:  cobra.ExactArgs(2),
		RunE:  runInitiate,
	}
	addSelectionFlags(cmd)
	return cmd
}

func runInitiate(cmd *cobra.Command, args []string) error {
	host := args[0]
	port := args[1]

	if err := gotaps.Initialize(gotaps.WithLogLevel(log.ParseLevel(viper.GetString("log-level")))); err != nil {
		return err
	}
	defer gotaps.CloseLibrary()

	var portNum uint16
	if _, err := fmt.Sscanf(port, "%d", &portNum); err != nil {
		return fmt.Errorf("invalid port %q: %w", port, err)
	}

	pc := gotaps.NewPreconnection(
		[]*endpoint.Remote{{Address: host, Port: portNum}},
		buildSelection(),
		nil,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		cancel()
	}()

	conn, err := pc.Initiate(ctx, connection.Callbacks{
		Receive: func(m *message.Message) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", m.Content)
		},
		ConnectionError: func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "connection error: %v\n", err)
		},
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info("connection established", log.Fields{"uuid": conn.UUID().String()})

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		conn.Send(message.New(scanner.Bytes()), nil)
	}
	return scanner.Err()
}
