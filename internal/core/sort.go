// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package core

import "time"

// SortType orders post and comment listings.
type SortType string

// Sort types.
const (
	SortActive       SortType = "Active"
	SortHot          SortType = "Hot"
	SortNew          SortType = "New"
	SortTopDay       SortType = "TopDay"
	SortTopWeek      SortType = "TopWeek"
	SortTopMonth     SortType = "TopMonth"
	SortTopYear      SortType = "TopYear"
	SortTopAll       SortType = "TopAll"
	SortMostComments SortType = "MostComments"
	SortNewComments  SortType = "NewComments"
)

// ParseSortType returns the sort named by s. An empty string selects SortNew.
func ParseSortType(s string) (SortType, bool) {
	if s == "" {
		return SortNew, true
	}
	switch st := SortType(s); st {
	case SortActive, SortHot, SortNew, SortTopDay, SortTopWeek, SortTopMonth,
		SortTopYear, SortTopAll, SortMostComments, SortNewComments:
		return st, true
	}
	return "", false
}

// Since returns the earliest publish time included by a Top* sort, and false
// for sorts without a time window.
func (s SortType) Since(now time.Time) (time.Time, bool) {
	switch s {
	case SortTopDay:
		return now.AddDate(0, 0, -1), true
	case SortTopWeek:
		return now.AddDate(0, 0, -7), true
	case SortTopMonth:
		return now.AddDate(0, -1, 0), true
	case SortTopYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// ListingType selects which communities a listing draws from.
type ListingType string

// Listing types.
const (
	ListingAll        ListingType = "All"
	ListingLocal      ListingType = "Local"
	ListingSubscribed ListingType = "Subscribed"
	ListingCommunity  ListingType = "Community"
)

// ParseListingType returns the listing named by s.
func ParseListingType(s string) (ListingType, bool) {
	switch lt := ListingType(s); lt {
	case ListingAll, ListingLocal, ListingSubscribed, ListingCommunity:
		return lt, true
	}
	return "", false
}
