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

// Command gotapsctl is a thin demo binary over package gotaps: "initiate"
// dials a remote endpoint and pipes stdin to it; "listen" binds a local
// endpoint and echoes whatever it receives. Not a polished deliverable —
// a config/CLI harness for exercising the library by hand.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ikhovind/gotaps/log"
)

var cfgFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gotapsctl",
		Short: "Exercise the gotaps Transport Services API from the command line",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.gotapsctl.yaml)")
	root.PersistentFlags().String("log-level", "info", "TRACE, DEBUG, INFO, WARN or ERROR")
	_ = viper.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	cobra.OnInitialize(func() {
		initConfig()
		log.SetLevel(log.ParseLevel(viper.GetString("log-level")))
	})

	root.AddCommand(newInitiateCommand())
	root.AddCommand(newListenCommand())
	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".gotapsctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GOTAPSCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
