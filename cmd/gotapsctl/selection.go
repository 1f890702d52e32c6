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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ikhovind/gotaps/property"
)

// addSelectionFlags registers one flag per selection property, each
// bound into viper under "selection.<name>" so a config file or
// GOTAPSCTL_SELECTION_* env var can set defaults a flag then overrides.
func addSelectionFlags(cmd *cobra.Command) {
	for _, n := range property.Names() {
		cmd.Flags().String(n.String(), "", n.String()+" preference: PROHIBIT, AVOID, NO_PREFERENCE, PREFER or REQUIRE")
	}
	// Bound when the command runs, so the keys point at the running
	// subcommand's flags rather than at whichever command registered last.
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		for _, n := range property.Names() {
			_ = viper.BindPFlag("selection."+n.String(), cmd.Flags().Lookup(n.String()))
		}
	}
}

// buildSelection starts from the library defaults and applies any
// selection.<name> value found in viper (flag, env, or config file).
func buildSelection() *property.SelectionProperties {
	sel := property.BuildSelectionProperties()
	for _, n := range property.Names() {
		if v := viper.GetString("selection." + n.String()); v != "" {
			sel.Set(n, property.ParsePreference(v))
		}
	}
	return sel
}
