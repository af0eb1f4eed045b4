/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package store

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

var (
	idMu   sync.Mutex
	idSeq  uint32
	idRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewID generates an id of the form <prefix>-<unix-ms>-<suffix>. The suffix
// combines a random base-36 tag with a process-wide sequence number, so two
// calls within the same millisecond still produce distinct ids.
func NewID(prefix string) string {
	idMu.Lock()
	idSeq++
	seq := idSeq
	tag := strconv.FormatUint(idRand.Uint64()%(36*36*36*36*36*36), 36)
	idMu.Unlock()
	return fmt.Sprintf("%s-%d-%s%d", prefix, time.Now().UnixMilli(), tag, seq)
}
