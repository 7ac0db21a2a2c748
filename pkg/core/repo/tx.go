// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Tx represents a storage transaction. It is unsafe to be used
// concurrently. Only one transaction may be open at any time, so all
// reads which are performed in a Tx observe the effects of previously
// committed transactions and the Tx own staged changes.
type Tx interface {
	// IsTx method prevents a non-Tx object (such as a Conn) to
	// mistakenly implement the Tx interface.
	IsTx()
}
