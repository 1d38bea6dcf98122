package gservice

// FetchOrdered exposes the concurrent fan-out helper to the external test package.
var FetchOrdered = fetchOrdered
