// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksig_test

import (
	"testing"

	"code.hybscloud.com/ksig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalStruct_SharedHandler(t *testing.T) {
	s := ksig.NewSignalStruct()
	require.NotNil(t, s.Handler())

	custom := ksig.NewSigaction(ksig.SaHandler(ksig.SigCustomized(0x2000)), 0, 0, nil)
	require.NoError(t, s.Handler().Set(ksig.SIGUSR1, custom))

	// A second task sharing the same SignalStruct observes the same table.
	shared := s.Handler()
	got := shared.Get(ksig.SIGUSR1)
	assert.Equal(t, uint64(0x2000), got.Action().Handler().Addr())
}

func TestSignalStruct_RefCounting(t *testing.T) {
	s := ksig.NewSignalStruct()
	assert.Equal(t, int64(0), s.Cnt())
	assert.Equal(t, int64(1), s.IncRef())
	assert.Equal(t, int64(2), s.IncRef())
	assert.Equal(t, int64(1), s.DecRef())
}
