package swarm

import (
	"fmt"
	"strings"
)

const (
	// TblParticles is the name of the sql database table that contains
	// positions and values for particles for each iteration.
	TblParticles = "swarmparticles"
	// TblParticlesBest is the name of the sql database table that contains
	// each particle's personal best position at each iteration.
	TblParticlesBest = "swarmparticlesbest"
	// TblBest is the name of the sql database table that contains
	// the best position for the entire swarm at each iteration.
	TblBest = "swarmbest"
	// TblCoefs holds the velocity coefficients in effect at each iteration.
	TblCoefs = "swarmcoefs"
)

func (s *State) initdb() error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + TblParticles + " (run TEXT, particle INTEGER, iter INTEGER, val REAL" + s.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblParticlesBest + " (run TEXT, particle INTEGER, iter INTEGER, best REAL" + s.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblBest + " (run TEXT, iter INTEGER, val REAL" + s.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblCoefs + " (run TEXT, iter INTEGER, social REAL, cognitive REAL, inertia REAL);",
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("swarm: creating tables: %w", err)
		}
	}
	return nil
}

// xdbsql renders the per-dimension column fragment for op, which is one of
// "define", "x" or "?".
func (s *State) xdbsql(op string) string {
	var b strings.Builder
	for i := 0; i < s.prob.Dims(); i++ {
		switch op {
		case "?":
			b.WriteString(",?")
		case "define":
			fmt.Fprintf(&b, ",x%v REAL", i)
		case "x":
			fmt.Fprintf(&b, ",x%v", i)
		default:
			panic("invalid db op " + op)
		}
	}
	return b.String()
}

func pos2iface(pos []float64) []interface{} {
	iface := make([]interface{}, 0, len(pos))
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}

func (s *State) updateDb() (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	s0 := "INSERT INTO " + TblParticles + " (run,particle,iter,val" + s.xdbsql("x") + ") VALUES (?,?,?,?" + s.xdbsql("?") + ");"
	s1 := "INSERT INTO " + TblParticlesBest + " (run,particle,iter,best" + s.xdbsql("x") + ") VALUES (?,?,?,?" + s.xdbsql("?") + ");"
	for _, p := range s.pop {
		args := []interface{}{s.runID, p.ID, s.count, p.Val}
		args = append(args, pos2iface(p.Pos.Slice())...)
		if _, err := tx.Exec(s0, args...); err != nil {
			return err
		}

		args = []interface{}{s.runID, p.ID, s.count, p.BestVal}
		args = append(args, pos2iface(p.Best.Slice())...)
		if _, err := tx.Exec(s1, args...); err != nil {
			return err
		}
	}

	s2 := "INSERT INTO " + TblBest + " (run,iter,val" + s.xdbsql("x") + ") VALUES (?,?,?" + s.xdbsql("?") + ");"
	args := []interface{}{s.runID, s.count, s.bestVal}
	args = append(args, pos2iface(s.best.Slice())...)
	if _, err := tx.Exec(s2, args...); err != nil {
		return err
	}

	s3 := "INSERT INTO " + TblCoefs + " (run,iter,social,cognitive,inertia) VALUES (?,?,?,?,?);"
	_, err = tx.Exec(s3, s.runID, s.count, s.coefs.Social, s.coefs.Cognitive, s.coefs.Inertia)
	return err
}
