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
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ikhovind/gotaps"
	"github.com/ikhovind/gotaps/connection"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/listener"
	"github.com/ikhovind/gotaps/log"
	"github.com/ikhovind/gotaps/message"
)

func newListenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen <port>",
		Short: "Bind a local endpoint and echo back whatever each peer sends",
		Args:  cobra.ExactArgs(1),
		RunE:  runListen,
	}
	addSelectionFlags(cmd)
	return cmd
}

func runListen(cmd *cobra.Command, args []string) error {
	var port uint16
	if _, err := fmt.Sscanf(args[0], "%d", &port); err != nil {
		return fmt.Errorf("invalid port %q: %w", args[0], err)
	}

	if err := gotaps.Initialize(gotaps.WithLogLevel(log.ParseLevel(viper.GetString("log-level")))); err != nil {
		return err
	}
	defer gotaps.CloseLibrary()

	pc := gotaps.NewPreconnectionWithLocal(nil, buildSelection(), nil, &endpoint.Local{Port: port})

	ln, err := pc.Listen(cmd.Context(), listener.Callbacks{
		ConnectionReceived: func(conn *connection.Connection) {
			log.Info("peer connected", log.Fields{"uuid": conn.UUID().String()})
			conn.OnReceive(func(m *message.Message) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", m.Content)
				conn.Send(m, nil)
			})
		},
		EstablishmentError: func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "establishment error: %v\n", err)
		},
	})
	if err != nil {
		return err
	}
	defer ln.Stop()

	log.Info("listening", log.Fields{"addr": ln.Addr().String()})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return nil
}
