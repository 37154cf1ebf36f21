package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/options"
)

// Gateway is a mock implementation of drivefm.Gateway.
type Gateway struct {
	mock.Mock
}

var _ drivefm.Gateway = (*Gateway)(nil)

// NewGateway creates a new Gateway mock. Expectations are asserted when the test ends.
func NewGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *Gateway {
	m := &Gateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Gateway_Expecter offers typed helpers for setting expectations.
type Gateway_Expecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expecter of the mock.
func (_m *Gateway) EXPECT() *Gateway_Expecter {
	return &Gateway_Expecter{mock: &_m.Mock}
}

func callOptionArgs(opts []options.CallOption) []interface{} {
	args := make([]interface{}, len(opts))
	for i, o := range opts {
		args[i] = o
	}
	return args
}

// List provides a mock function with given fields: ctx, opts
func (_m *Gateway) List(ctx context.Context, opts ...options.CallOption) ([]drivefm.FileRecord, error) {
	ret := _m.Called(append([]interface{}{ctx}, callOptionArgs(opts)...)...)

	if rf, ok := ret.Get(0).(func(context.Context, ...options.CallOption) ([]drivefm.FileRecord, error)); ok {
		return rf(ctx, opts...)
	}

	var r0 []drivefm.FileRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]drivefm.FileRecord)
	}
	return r0, ret.Error(1)
}

// Gateway_List_Call is the typed expectation of List.
type Gateway_List_Call struct {
	*mock.Call
}

// List is a helper method to define mock.On call
//   - ctx context.Context
//   - opts ...options.CallOption
func (_e *Gateway_Expecter) List(ctx interface{}, opts ...interface{}) *Gateway_List_Call {
	return &Gateway_List_Call{Call: _e.mock.On("List", append([]interface{}{ctx}, opts...)...)}
}

func (_c *Gateway_List_Call) Return(records []drivefm.FileRecord, err error) *Gateway_List_Call {
	_c.Call.Return(records, err)
	return _c
}

func (_c *Gateway_List_Call) RunAndReturn(run func(context.Context, ...options.CallOption) ([]drivefm.FileRecord, error)) *Gateway_List_Call {
	_c.Call.Return(run)
	return _c
}

// Upload provides a mock function with given fields: ctx, name, contentType, payload, opts
func (_m *Gateway) Upload(ctx context.Context, name, contentType string, payload io.Reader,
	opts ...options.CallOption) (drivefm.FileRecord, error) {
	ret := _m.Called(append([]interface{}{ctx, name, contentType, payload}, callOptionArgs(opts)...)...)

	if rf, ok := ret.Get(0).(func(context.Context, string, string, io.Reader, ...options.CallOption) (drivefm.FileRecord, error)); ok {
		return rf(ctx, name, contentType, payload, opts...)
	}

	var r0 drivefm.FileRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(drivefm.FileRecord)
	}
	return r0, ret.Error(1)
}

// Gateway_Upload_Call is the typed expectation of Upload.
type Gateway_Upload_Call struct {
	*mock.Call
}

// Upload is a helper method to define mock.On call
//   - ctx context.Context
//   - name string
//   - contentType string
//   - payload io.Reader
//   - opts ...options.CallOption
func (_e *Gateway_Expecter) Upload(ctx, name, contentType, payload interface{}, opts ...interface{}) *Gateway_Upload_Call {
	return &Gateway_Upload_Call{Call: _e.mock.On("Upload", append([]interface{}{ctx, name, contentType, payload}, opts...)...)}
}

func (_c *Gateway_Upload_Call) Return(record drivefm.FileRecord, err error) *Gateway_Upload_Call {
	_c.Call.Return(record, err)
	return _c
}

func (_c *Gateway_Upload_Call) RunAndReturn(run func(context.Context, string, string, io.Reader, ...options.CallOption) (drivefm.FileRecord, error)) *Gateway_Upload_Call {
	_c.Call.Return(run)
	return _c
}

// Rename provides a mock function with given fields: ctx, id, newName
func (_m *Gateway) Rename(ctx context.Context, id, newName string) (drivefm.FileRecord, error) {
	ret := _m.Called(ctx, id, newName)

	if rf, ok := ret.Get(0).(func(context.Context, string, string) (drivefm.FileRecord, error)); ok {
		return rf(ctx, id, newName)
	}

	var r0 drivefm.FileRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(drivefm.FileRecord)
	}
	return r0, ret.Error(1)
}

// Gateway_Rename_Call is the typed expectation of Rename.
type Gateway_Rename_Call struct {
	*mock.Call
}

// Rename is a helper method to define mock.On call
//   - ctx context.Context
//   - id string
//   - newName string
func (_e *Gateway_Expecter) Rename(ctx, id, newName interface{}) *Gateway_Rename_Call {
	return &Gateway_Rename_Call{Call: _e.mock.On("Rename", ctx, id, newName)}
}

func (_c *Gateway_Rename_Call) Return(record drivefm.FileRecord, err error) *Gateway_Rename_Call {
	_c.Call.Return(record, err)
	return _c
}

func (_c *Gateway_Rename_Call) RunAndReturn(run func(context.Context, string, string) (drivefm.FileRecord, error)) *Gateway_Rename_Call {
	_c.Call.Return(run)
	return _c
}

// Delete provides a mock function with given fields: ctx, id
func (_m *Gateway) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		return rf(ctx, id)
	}
	return ret.Error(0)
}

// Gateway_Delete_Call is the typed expectation of Delete.
type Gateway_Delete_Call struct {
	*mock.Call
}

// Delete is a helper method to define mock.On call
//   - ctx context.Context
//   - id string
func (_e *Gateway_Expecter) Delete(ctx, id interface{}) *Gateway_Delete_Call {
	return &Gateway_Delete_Call{Call: _e.mock.On("Delete", ctx, id)}
}

func (_c *Gateway_Delete_Call) Return(err error) *Gateway_Delete_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *Gateway_Delete_Call) RunAndReturn(run func(context.Context, string) error) *Gateway_Delete_Call {
	_c.Call.Return(run)
	return _c
}

// Download provides a mock function with given fields: ctx, id
func (_m *Gateway) Download(ctx context.Context, id string) (*drivefm.Download, error) {
	ret := _m.Called(ctx, id)

	if rf, ok := ret.Get(0).(func(context.Context, string) (*drivefm.Download, error)); ok {
		return rf(ctx, id)
	}

	var r0 *drivefm.Download
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*drivefm.Download)
	}
	return r0, ret.Error(1)
}

// Gateway_Download_Call is the typed expectation of Download.
type Gateway_Download_Call struct {
	*mock.Call
}

// Download is a helper method to define mock.On call
//   - ctx context.Context
//   - id string
func (_e *Gateway_Expecter) Download(ctx, id interface{}) *Gateway_Download_Call {
	return &Gateway_Download_Call{Call: _e.mock.On("Download", ctx, id)}
}

func (_c *Gateway_Download_Call) Return(dl *drivefm.Download, err error) *Gateway_Download_Call {
	_c.Call.Return(dl, err)
	return _c
}

func (_c *Gateway_Download_Call) RunAndReturn(run func(context.Context, string) (*drivefm.Download, error)) *Gateway_Download_Call {
	_c.Call.Return(run)
	return _c
}

// ResolveThumbnail provides a mock function with given fields: ctx, id
func (_m *Gateway) ResolveThumbnail(ctx context.Context, id string) (*drivefm.Thumbnail, error) {
	ret := _m.Called(ctx, id)

	if rf, ok := ret.Get(0).(func(context.Context, string) (*drivefm.Thumbnail, error)); ok {
		return rf(ctx, id)
	}

	var r0 *drivefm.Thumbnail
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*drivefm.Thumbnail)
	}
	return r0, ret.Error(1)
}

// Gateway_ResolveThumbnail_Call is the typed expectation of ResolveThumbnail.
type Gateway_ResolveThumbnail_Call struct {
	*mock.Call
}

// ResolveThumbnail is a helper method to define mock.On call
//   - ctx context.Context
//   - id string
func (_e *Gateway_Expecter) ResolveThumbnail(ctx, id interface{}) *Gateway_ResolveThumbnail_Call {
	return &Gateway_ResolveThumbnail_Call{Call: _e.mock.On("ResolveThumbnail", ctx, id)}
}

func (_c *Gateway_ResolveThumbnail_Call) Return(thumb *drivefm.Thumbnail, err error) *Gateway_ResolveThumbnail_Call {
	_c.Call.Return(thumb, err)
	return _c
}

func (_c *Gateway_ResolveThumbnail_Call) RunAndReturn(run func(context.Context, string) (*drivefm.Thumbnail, error)) *Gateway_ResolveThumbnail_Call {
	_c.Call.Return(run)
	return _c
}
