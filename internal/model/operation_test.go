package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/idev/internal/model"
)

func TestOperationValidate(t *testing.T) {
	valid := func() model.Operation {
		return model.Operation{
			ID:         "01J0000000000000000000000",
			DeviceUDID: "udid-1",
			Kind:       model.OperationKindGetValue,
			Target:     "ProductVersion",
			Status:     model.OperationStatusSucceeded,
			CreatedAt:  time.Now(),
		}
	}

	tests := map[string]struct {
		op     func() model.Operation
		expErr bool
	}{
		"A valid operation should pass.": {
			op: valid,
		},

		"A missing ID should fail.": {
			op: func() model.Operation {
				o := valid()
				o.ID = ""
				return o
			},
			expErr: true,
		},

		"A missing device should fail.": {
			op: func() model.Operation {
				o := valid()
				o.DeviceUDID = ""
				return o
			},
			expErr: true,
		},

		"An unknown kind should fail.": {
			op: func() model.Operation {
				o := valid()
				o.Kind = "reboot"
				return o
			},
			expErr: true,
		},

		"A failed operation without error should fail.": {
			op: func() model.Operation {
				o := valid()
				o.Status = model.OperationStatusFailed
				return o
			},
			expErr: true,
		},

		"A failed operation with error should pass.": {
			op: func() model.Operation {
				o := valid()
				o.Status = model.OperationStatusFailed
				o.Error = "lockdown: missing value"
				return o
			},
		},

		"A negative payload size should fail.": {
			op: func() model.Operation {
				o := valid()
				o.Kind = model.OperationKindUploadImage
				o.PayloadSize = -1
				return o
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.op().Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
