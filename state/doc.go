// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides a journaled storage overlay for builtin contracts.
// Changes made to a State stay in memory until they are staged and committed
// to the underlying kv store in a single bulk write.
package state
